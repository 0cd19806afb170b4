package photocache

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeBlobStore struct {
	mu       sync.Mutex
	urlCalls []string
	uploads  map[string][]byte
	deletes  []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{uploads: map[string][]byte{}}
}

func (s *fakeBlobStore) DownloadURL(ctx context.Context, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urlCalls = append(s.urlCalls, path)
	return "https://signed.example/" + path, nil
}

func (s *fakeBlobStore) Upload(ctx context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[path] = data
	return nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, path)
	return nil
}

func (s *fakeBlobStore) urlCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urlCalls)
}

type fakeSnapshotStore struct {
	mu     sync.Mutex
	data   []byte
	ok     bool
	writes int
}

func (s *fakeSnapshotStore) Read(ctx context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, s.ok, nil
}

func (s *fakeSnapshotStore) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.ok = true
	s.writes++
	return nil
}

func (s *fakeSnapshotStore) Remove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	s.ok = false
	return nil
}

func (s *fakeSnapshotStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *fakeSnapshotStore) snapshot(t *testing.T) map[string]Entry {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ok {
		return nil
	}
	entries := map[string]Entry{}
	if err := json.Unmarshal(s.data, &entries); err != nil {
		t.Fatalf("Bad snapshot JSON: %v", err)
	}
	return entries
}

// waitFor polls until cond holds; persistence runs on a background goroutine
// with no join point, so tests wait for the write to land.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Condition not reached before deadline")
}

func TestResolveUntagged(t *testing.T) {
	ctx := context.Background()
	blobs := newFakeBlobStore()
	c := New(blobs, &fakeSnapshotStore{})

	url, err := c.Resolve(ctx, "")
	if err != nil || url != "" {
		t.Errorf("Empty ref: got (%q, %v), want (\"\", nil)", url, err)
	}

	url, err = c.Resolve(ctx, "local-file.jpg")
	if err != nil || url != "" {
		t.Errorf("Untagged ref: got (%q, %v), want (\"\", nil)", url, err)
	}

	if blobs.urlCallCount() != 0 {
		t.Errorf("Untagged refs must not reach the blob store")
	}
}

func TestResolveCachesInMemory(t *testing.T) {
	ctx := context.Background()
	blobs := newFakeBlobStore()
	c := New(blobs, &fakeSnapshotStore{})

	first, err := c.Resolve(ctx, "remote://members/1_1.jpg")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first != "https://signed.example/members/1_1.jpg" {
		t.Errorf("Bad resolved URL %q", first)
	}

	second, err := c.Resolve(ctx, "remote://members/1_1.jpg")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if second != first {
		t.Errorf("Second resolution disagrees; got %q, want %q", second, first)
	}

	if got := blobs.urlCallCount(); got != 1 {
		t.Errorf("Second resolution should be a memory hit; got %d backend calls, want 1", got)
	}
}

func TestResolvePersistsAsync(t *testing.T) {
	ctx := context.Background()
	snaps := &fakeSnapshotStore{}
	c := New(newFakeBlobStore(), snaps)

	if _, err := c.Resolve(ctx, "remote://members/1_1.jpg"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	waitFor(t, func() bool { return snaps.writeCount() >= 1 })

	entries := snaps.snapshot(t)
	entry, ok := entries["remote://members/1_1.jpg"]
	if !ok {
		t.Fatalf("Snapshot missing the resolved entry; have %v", entries)
	}
	if entry.URL != "https://signed.example/members/1_1.jpg" {
		t.Errorf("Bad persisted URL %q", entry.URL)
	}
	if entry.Timestamp == 0 {
		t.Errorf("Persisted entry missing its timestamp")
	}
}

func TestLoadDropsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UnixMilli()

	data, err := json.Marshal(map[string]Entry{
		"remote://members/fresh_1.jpg": {
			URL:       "https://signed.example/members/fresh_1.jpg",
			Timestamp: now - int64(time.Hour/time.Millisecond),
		},
		"remote://members/stale_1.jpg": {
			URL:       "https://signed.example/members/stale_1.jpg",
			Timestamp: now - int64(8*24*time.Hour/time.Millisecond),
		},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	blobs := newFakeBlobStore()
	c := New(blobs, &fakeSnapshotStore{data: data, ok: true})

	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	url, err := c.Resolve(ctx, "remote://members/fresh_1.jpg")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if url != "https://signed.example/members/fresh_1.jpg" {
		t.Errorf("Fresh entry should survive the load; got %q", url)
	}
	if got := blobs.urlCallCount(); got != 0 {
		t.Errorf("Fresh entry should be a memory hit; got %d backend calls", got)
	}

	if _, err := c.Resolve(ctx, "remote://members/stale_1.jpg"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := blobs.urlCallCount(); got != 1 {
		t.Errorf("Stale entry should have been dropped at load; got %d backend calls, want 1", got)
	}
}

func TestLoadEmptySnapshot(t *testing.T) {
	c := New(newFakeBlobStore(), &fakeSnapshotStore{})
	if err := c.Load(context.Background()); err != nil {
		t.Errorf("Load of an absent snapshot should succeed: %v", err)
	}
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	blobs := newFakeBlobStore()
	c := New(blobs, &fakeSnapshotStore{})

	photoRef, err := c.Upload(ctx, testPNG(t, 1000, 500), "1700000000000")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if !strings.HasPrefix(photoRef, "remote://members/1700000000000_") {
		t.Errorf("Bad photo ref %q", photoRef)
	}
	if !strings.HasSuffix(photoRef, ".jpg") {
		t.Errorf("Upload should produce a .jpg path; got %q", photoRef)
	}

	path := strings.TrimPrefix(photoRef, "remote://")
	data, ok := blobs.uploads[path]
	if !ok {
		t.Fatalf("No blob uploaded at %q; have %v", path, blobs.uploads)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Uploaded blob is not a JPEG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 800 || bounds.Dy() != 400 {
		t.Errorf("Bad shrunk dimensions; got %dx%d, want 800x400", bounds.Dx(), bounds.Dy())
	}

	// The fresh reference resolves eagerly; a follow-up Resolve must be a
	// memory hit.
	callsAfterUpload := blobs.urlCallCount()
	if callsAfterUpload != 1 {
		t.Errorf("Upload should resolve its URL eagerly; got %d backend calls, want 1", callsAfterUpload)
	}
	if _, err := c.Resolve(ctx, photoRef); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := blobs.urlCallCount(); got != callsAfterUpload {
		t.Errorf("Resolve after upload should not hit the backend; got %d calls", got)
	}
}

func TestUploadKeepsSmallImages(t *testing.T) {
	ctx := context.Background()
	blobs := newFakeBlobStore()
	c := New(blobs, &fakeSnapshotStore{})

	photoRef, err := c.Upload(ctx, testPNG(t, 300, 200), "1")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	path := strings.TrimPrefix(photoRef, "remote://")
	img, err := jpeg.Decode(bytes.NewReader(blobs.uploads[path]))
	if err != nil {
		t.Fatalf("Uploaded blob is not a JPEG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 300 || bounds.Dy() != 200 {
		t.Errorf("Small image should keep its dimensions; got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestUploadRejectsGarbage(t *testing.T) {
	c := New(newFakeBlobStore(), &fakeSnapshotStore{})
	if _, err := c.Upload(context.Background(), []byte("not an image"), "1"); err == nil {
		t.Errorf("Upload of a non-image should fail")
	}
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	blobs := newFakeBlobStore()
	snaps := &fakeSnapshotStore{}
	c := New(blobs, snaps)

	if _, err := c.Resolve(ctx, "remote://members/1_1.jpg"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	waitFor(t, func() bool { return snaps.writeCount() >= 1 })

	c.Invalidate(ctx, "remote://members/1_1.jpg")
	waitFor(t, func() bool { return snaps.writeCount() >= 2 })

	if _, ok := snaps.snapshot(t)["remote://members/1_1.jpg"]; ok {
		t.Errorf("Invalidated entry survived in the snapshot")
	}

	if _, err := c.Resolve(ctx, "remote://members/1_1.jpg"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := blobs.urlCallCount(); got != 2 {
		t.Errorf("Invalidated entry should need a fresh backend call; got %d calls, want 2", got)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	blobs := newFakeBlobStore()
	snaps := &fakeSnapshotStore{}
	c := New(blobs, snaps)

	if _, err := c.Resolve(ctx, "remote://members/1_1.jpg"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	waitFor(t, func() bool { return snaps.writeCount() >= 1 })

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if snaps.snapshot(t) != nil {
		t.Errorf("Clear should remove the snapshot")
	}

	if _, err := c.Resolve(ctx, "remote://members/1_1.jpg"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := blobs.urlCallCount(); got != 2 {
		t.Errorf("Cleared entry should need a fresh backend call; got %d calls, want 2", got)
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 10 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Encoding test image: %v", err)
	}
	return buf.Bytes()
}
