package roster

import (
	"context"
	"sync"
	"time"

	"newfriends/dblayer"
	"newfriends/dbtypes"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// photoResolveBatchSize bounds outstanding URL resolutions: waves of this
// many run concurrently, waves themselves run sequentially.
const photoResolveBatchSize = 5

// State is the controller's position in the list/edit cycle.
type State int

const (
	// StateListing shows the filtered roster.
	StateListing State = iota
	// StateEditing shows one selected member, possibly a freshly
	// constructed empty one.
	StateEditing
)

// Store is the slice of the record store the controller consumes.
type Store interface {
	LoadAll(ctx context.Context, sortBy dblayer.SortBy) ([]*dbtypes.Member, error)
	Save(ctx context.Context, member *dbtypes.Member) error
	Delete(ctx context.Context, id, photoRef string) error
}

// PhotoResolver is the slice of the photo URL cache the controller consumes.
type PhotoResolver interface {
	Resolve(ctx context.Context, photoRef string) (string, error)
	Invalidate(ctx context.Context, photoRef string)
}

// Controller owns the roster view state: the loaded records, their display
// projection, the resolved photo URLs, the live filter configuration, and
// the member being edited, if any.
//
// Transitions: Listing --select/add--> Editing; Editing --save or delete
// success--> Listing with a full reload; Editing --cancel--> Listing with no
// reload.  A failed save or delete stays in Editing so the user can retry.
type Controller struct {
	store  Store
	photos PhotoResolver

	mu        sync.Mutex
	state     State
	sortBy    dblayer.SortBy
	displays  []Display
	photoURLs map[string]string
	filters   Filters
	editing   *dbtypes.Member
}

func NewController(store Store, photos PhotoResolver) *Controller {
	return &Controller{
		store:     store,
		photos:    photos,
		sortBy:    dblayer.SortByDate,
		photoURLs: map[string]string{},
		filters:   DefaultFilters(),
	}
}

// Load re-fetches the whole roster, projects it, and resolves photo URLs in
// batches.  Always a full re-fetch, never an incremental patch; roster sizes
// are small.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	sortBy := c.sortBy
	c.mu.Unlock()

	members, err := c.store.LoadAll(ctx, sortBy)
	if err != nil {
		return err
	}

	today := time.Now()
	displays := make([]Display, 0, len(members))
	for _, m := range members {
		displays = append(displays, Project(m, today))
	}

	photoURLs := c.resolvePhotoURLs(ctx, displays)

	c.mu.Lock()
	c.displays = displays
	c.photoURLs = photoURLs
	c.mu.Unlock()

	return nil
}

// resolvePhotoURLs runs the secondary resolution pass over the loaded
// roster.  Resolution failures are logged and the row falls back to its
// placeholder avatar; they are never surfaced to the user.
func (c *Controller) resolvePhotoURLs(ctx context.Context, displays []Display) map[string]string {
	var withPhotos []Display
	for _, d := range displays {
		if _, ok := dbtypes.RemoteRefPath(d.PhotoRef); ok {
			withPhotos = append(withPhotos, d)
		}
	}

	urls := map[string]string{}
	var urlsMu sync.Mutex

	for start := 0; start < len(withPhotos); start += photoResolveBatchSize {
		end := start + photoResolveBatchSize
		if end > len(withPhotos) {
			end = len(withPhotos)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, d := range withPhotos[start:end] {
			d := d
			g.Go(func() error {
				url, err := c.photos.Resolve(gctx, d.PhotoRef)
				if err != nil {
					glog.Errorf("Error while resolving photo URL for member %s: %v", d.ID, err)
					return nil
				}
				if url != "" {
					urlsMu.Lock()
					urls[d.ID] = url
					urlsMu.Unlock()
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			glog.Errorf("Error while resolving photo URL batch: %v", err)
		}
	}

	return urls
}

// Visible applies the live filter configuration and the search text to the
// loaded roster, preserving store order.
func (c *Controller) Visible(search string) []Display {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Filter(c.displays, c.filters, search, time.Now())
}

// PhotoURL returns the resolved photo URL for a member, or "" when the
// member has no resolvable photo.
func (c *Controller) PhotoURL(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.photoURLs[id]
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// ApplyFilters replaces the live filter configuration.  The staged copy the
// filter panel edits lives in the panel itself; calling this is the confirm
// action, and cancel simply never calls it.
func (c *Controller) ApplyFilters(f Filters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = f
}

func (c *Controller) SortBy() dblayer.SortBy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortBy
}

func (c *Controller) SetSortBy(sortBy dblayer.SortBy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sortBy = sortBy
}

// Select moves to Editing for the member with the given ID, reporting
// whether the member exists in the loaded roster.
func (c *Controller) Select(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.displays {
		if d.ID == id {
			// Edit a copy so that cancel discards staged changes, the
			// photo reference included.
			member := *d.Member
			c.state = StateEditing
			c.editing = &member
			return true
		}
	}
	return false
}

// AddNew moves to Editing with a freshly constructed empty member.
func (c *Controller) AddNew() *dbtypes.Member {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateEditing
	c.editing = dbtypes.NewMember(time.Now())
	return c.editing
}

// Editing returns the member currently being edited, or nil in Listing
// state.
func (c *Controller) Editing() *dbtypes.Member {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing
}

// MemberByID returns the stored record with the given ID from the loaded
// roster, or the member being edited when it isn't loaded yet.
func (c *Controller) MemberByID(id string) *dbtypes.Member {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.displays {
		if d.ID == id {
			return d.Member
		}
	}
	if c.editing != nil && c.editing.ID == id {
		return c.editing
	}
	return nil
}

// SetMemberPhoto records a freshly uploaded photo reference on the member
// being edited, matched by ID so an upload racing another session's
// selection can't land on the wrong edit target.  The reference is only
// persisted by a later successful Save.
func (c *Controller) SetMemberPhoto(id, photoRef string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing != nil && c.editing.ID == id {
		c.editing.Photo = photoRef
	}
}

// Save validates and stores the edited member.  An empty name fails before
// any backend call.  Success transitions to Listing with a full reload; on
// failure the controller stays in Editing so the user can retry.
func (c *Controller) Save(ctx context.Context, member *dbtypes.Member) error {
	if member.Name == "" {
		return dblayer.ErrNameMustNotBeEmpty
	}

	if err := c.store.Save(ctx, member); err != nil {
		return err
	}

	c.mu.Lock()
	c.state = StateListing
	c.editing = nil
	c.mu.Unlock()

	return c.Load(ctx)
}

// DeleteByID removes the member with the given ID, invalidates its cached
// photo URL, and reloads.  The target is named explicitly rather than taken
// from the edit state, which is shared by every session this process serves;
// a concurrent selection elsewhere must not redirect the delete.  On failure
// the member stays selected.
func (c *Controller) DeleteByID(ctx context.Context, id string) error {
	member := c.MemberByID(id)
	if member == nil {
		// Already gone; a reload will bring the view up to date.
		return c.Load(ctx)
	}

	if err := c.store.Delete(ctx, member.ID, member.Photo); err != nil {
		return err
	}

	c.photos.Invalidate(ctx, member.Photo)

	c.mu.Lock()
	if c.editing != nil && c.editing.ID == id {
		c.state = StateListing
		c.editing = nil
	}
	c.mu.Unlock()

	return c.Load(ctx)
}

// Cancel discards the in-progress edit and returns to Listing without a
// reload.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateListing
	c.editing = nil
}
