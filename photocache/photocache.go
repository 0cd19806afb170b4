// Package photocache resolves tagged photo references to fetchable URLs
// through a two-tier cache: an in-memory map in front of a durable snapshot.
//
// The snapshot is consulted once, at Load time, when entries older than the
// retention window are dropped.  An entry loaded as valid is trusted for the
// rest of the process lifetime even if it crosses the expiry boundary
// mid-session; resolution is tuned for read latency, and a URL that goes
// stale surfaces as a broken image rather than a forced re-fetch.
package photocache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"newfriends/dbtypes"
)

const (
	cacheExpiryDays = 7
	uploadPathDir   = "members"
)

// BlobStore is the slice of blob storage the cache consumes.
type BlobStore interface {
	DownloadURL(ctx context.Context, path string) (string, error)
	Upload(ctx context.Context, path string, data []byte) error
	Delete(ctx context.Context, path string) error
}

// SnapshotStore persists the single cache snapshot blob.
type SnapshotStore interface {
	Read(ctx context.Context) (data []byte, ok bool, err error)
	Write(ctx context.Context, data []byte) error
	Remove(ctx context.Context) error
}

// Entry is one persisted cache record, keyed in the snapshot by the tagged
// photo reference.
type Entry struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// Cache is the two-tier photo URL cache.  Construct one per process and hand
// it to whichever components need photo resolution; there is no package-level
// state.
type Cache struct {
	blobs     BlobStore
	snapshots SnapshotStore

	mu   sync.Mutex
	urls map[string]string
}

func New(blobs BlobStore, snapshots SnapshotStore) *Cache {
	return &Cache{
		blobs:     blobs,
		snapshots: snapshots,
		urls:      map[string]string{},
	}
}

// Load rebuilds the in-memory tier from the persisted snapshot, dropping
// entries older than the retention window.  Call once at process start.
func (c *Cache) Load(ctx context.Context) error {
	data, ok, err := c.snapshots.Read(ctx)
	if err != nil {
		return fmt.Errorf("while reading cache snapshot: %w", err)
	}
	if !ok {
		return nil
	}

	entries := map[string]Entry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("while unmarshaling cache snapshot: %w", err)
	}

	now := time.Now().UnixMilli()
	expiry := int64(cacheExpiryDays * 24 * time.Hour / time.Millisecond)

	c.mu.Lock()
	defer c.mu.Unlock()
	for ref, entry := range entries {
		if now-entry.Timestamp < expiry {
			c.urls[ref] = entry.URL
		}
	}

	return nil
}

// Resolve maps a tagged photo reference to a fetchable URL.  Untagged
// references resolve to "" immediately, with no I/O.  A memory hit costs no
// I/O either; a miss asks the blob store and caches the answer under the
// original tagged reference.
func (c *Cache) Resolve(ctx context.Context, photoRef string) (string, error) {
	path, ok := dbtypes.RemoteRefPath(photoRef)
	if !ok {
		return "", nil
	}

	c.mu.Lock()
	if url, ok := c.urls[photoRef]; ok {
		c.mu.Unlock()
		return url, nil
	}
	c.mu.Unlock()

	url, err := c.blobs.DownloadURL(ctx, path)
	if err != nil {
		return "", fmt.Errorf("while getting download URL for %q: %w", path, err)
	}

	c.mu.Lock()
	c.urls[photoRef] = url
	c.mu.Unlock()

	c.persistAsync()

	return url, nil
}

// Upload shrinks and recompresses the image, writes it to a path derived from
// the owner ID and current time, and returns the tagged reference.  The URL
// for the new reference is resolved eagerly so the immediately following
// render doesn't pay a round trip.
func (c *Cache) Upload(ctx context.Context, imageBytes []byte, ownerID string) (string, error) {
	jpegBytes, err := shrinkToJPEG(imageBytes)
	if err != nil {
		return "", fmt.Errorf("while shrinking image: %w", err)
	}

	// Timestamped filenames keep repeated uploads by the same owner from
	// colliding.
	path := uploadPathDir + "/" + ownerID + "_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + ".jpg"

	if err := c.blobs.Upload(ctx, path, jpegBytes); err != nil {
		return "", fmt.Errorf("while uploading image to %q: %w", path, err)
	}

	photoRef := dbtypes.RemoteRefPrefix + path

	url, err := c.blobs.DownloadURL(ctx, path)
	if err != nil {
		return "", fmt.Errorf("while getting download URL for fresh upload %q: %w", path, err)
	}

	c.mu.Lock()
	c.urls[photoRef] = url
	c.mu.Unlock()

	c.persistAsync()

	return photoRef, nil
}

// Invalidate drops one entry from both tiers.
func (c *Cache) Invalidate(ctx context.Context, photoRef string) {
	c.mu.Lock()
	_, ok := c.urls[photoRef]
	delete(c.urls, photoRef)
	c.mu.Unlock()

	if ok {
		c.persistAsync()
	}
}

// Clear drops every entry from both tiers.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.urls = map[string]string{}
	c.mu.Unlock()

	if err := c.snapshots.Remove(ctx); err != nil {
		return fmt.Errorf("while removing cache snapshot: %w", err)
	}

	return nil
}

// persistAsync writes the whole in-memory tier to the durable snapshot in a
// background goroutine, stamping every entry with the current time.  There is
// no join point; readers always go through the in-memory tier, so a write in
// flight is never observed torn.
func (c *Cache) persistAsync() {
	now := time.Now().UnixMilli()

	c.mu.Lock()
	entries := make(map[string]Entry, len(c.urls))
	for ref, url := range c.urls {
		entries[ref] = Entry{URL: url, Timestamp: now}
	}
	c.mu.Unlock()

	go func() {
		data, err := json.Marshal(entries)
		if err != nil {
			slog.Error("Failed to marshal photo URL cache snapshot", slog.Any("err", err))
			return
		}
		if err := c.snapshots.Write(context.Background(), data); err != nil {
			slog.Error("Failed to persist photo URL cache snapshot", slog.Any("err", err))
		}
	}()
}
