package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/photolog/internal/domain"
	"github.com/msomdec/photolog/internal/exif"
	"github.com/msomdec/photolog/internal/store"
)

// catalogKey is the single storage key holding the full serialized catalog.
const catalogKey = "imageList"

// CatalogService orchestrates all catalog mutations: the compose flow for
// new entries, rename, and confirmed delete. Every successful mutation goes
// through the store's Replace, and the resulting snapshot is written to
// storage by a subscription hook attached during Hydrate.
type CatalogService struct {
	store     *store.Store
	kv        domain.KeyValueStore
	extractor domain.LocationExtractor
	decisions domain.DecisionProvider

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time

	// retryDelay is the pause before the single persistence retry.
	retryDelay time.Duration

	// writeMu serializes snapshot writes. writeGen numbers snapshots in
	// mutation order and writtenGen records the newest one on disk, so a
	// delayed retry cannot overwrite a newer snapshot that already landed.
	writeMu    sync.Mutex
	writeGen   uint64
	writtenGen uint64

	mu          sync.Mutex
	composing   bool
	provImage   []byte
	provType    string
	provLoc     domain.Coordinate
	provLocSet  bool
	unsubscribe func()

	writes sync.WaitGroup
}

// NewCatalogService creates a CatalogService. Hydrate must be called before
// any mutation.
func NewCatalogService(st *store.Store, kv domain.KeyValueStore, extractor domain.LocationExtractor, decisions domain.DecisionProvider) *CatalogService {
	return &CatalogService{
		store:      st,
		kv:         kv,
		extractor:  extractor,
		decisions:  decisions,
		now:        time.Now,
		retryDelay: 500 * time.Millisecond,
	}
}

// Hydrate reads the persisted catalog once, seeds the store, and only then
// attaches the persistence subscription so the seeding replace is not
// written straight back out.
func (s *CatalogService) Hydrate(ctx context.Context) error {
	var entries []domain.CatalogEntry

	data, err := s.kv.Get(ctx, catalogKey)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("decode persisted catalog: %w", err)
		}
	case errors.Is(err, domain.ErrNotFound):
		// First run: absent key is an empty catalog.
	default:
		return fmt.Errorf("read persisted catalog: %w", err)
	}

	s.store.Replace(entries)

	s.mu.Lock()
	s.unsubscribe = s.store.Subscribe(s.persist)
	s.mu.Unlock()

	slog.Info("catalog hydrated", "entries", len(entries))
	return nil
}

// Close detaches the persistence hook and waits for in-flight writes, so a
// graceful shutdown does not drop the latest mutation.
func (s *CatalogService) Close() {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.mu.Unlock()
	s.writes.Wait()
}

// Flush blocks until all persistence writes spawned so far have finished.
func (s *CatalogService) Flush() {
	s.writes.Wait()
}

// persist runs on every store replacement. The write is spawned so the
// in-memory mutation and its broadcast complete without waiting on storage;
// a failed write is logged and retried once, and in-memory state stays the
// source of truth until the next successful write.
func (s *CatalogService) persist(entries []domain.CatalogEntry) {
	s.writeMu.Lock()
	s.writeGen++
	gen := s.writeGen
	s.writeMu.Unlock()

	s.writes.Add(1)
	go func() {
		defer s.writes.Done()

		data, err := json.Marshal(entries)
		if err != nil {
			slog.Error("encode catalog for persistence", "error", err)
			return
		}

		err = s.write(gen, data)
		if err == nil {
			return
		}
		slog.Error("persist catalog", "error", err, "entries", len(entries))

		time.Sleep(s.retryDelay)
		if err := s.write(gen, data); err != nil {
			slog.Error("persist catalog retry failed", "error", err, "entries", len(entries))
		}
	}()
}

// write hands one snapshot to storage. A snapshot whose generation is older
// than the newest one already written is dropped: a slow first attempt or a
// delayed retry must never regress storage behind a write that landed.
func (s *CatalogService) write(gen uint64, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if gen <= s.writtenGen {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.kv.Set(ctx, catalogKey, data); err != nil {
		return err
	}
	s.writtenGen = gen
	return nil
}

// Entries returns the current snapshot.
func (s *CatalogService) Entries() []domain.CatalogEntry {
	return s.store.Current()
}

// Get returns the entry with the given id by value, for handing across the
// detail/navigation boundary.
func (s *CatalogService) Get(id string) (domain.CatalogEntry, error) {
	for _, e := range s.store.Current() {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return domain.CatalogEntry{}, domain.ErrNotFound
}

// BeginCompose opens a new composition. Only one composition can be in
// progress at a time.
func (s *CatalogService) BeginCompose() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.composing {
		return domain.ErrComposing
	}
	s.composing = true
	return nil
}

// CancelCompose discards all provisional state without side effects.
func (s *CatalogService) CancelCompose() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.composing {
		return domain.ErrNotComposing
	}
	s.clearComposeLocked()
	return nil
}

// CaptureImage stores the raw bytes as the provisional image and derives a
// provisional location from its embedded metadata. Capturing again before
// commit silently replaces the previous capture.
func (s *CatalogService) CaptureImage(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty image payload", domain.ErrInvalidInput)
	}

	// Extraction can take a moment on large files; run it outside the lock.
	loc := s.extractor.ExtractLocation(data)
	contentType := http.DetectContentType(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.composing {
		return domain.ErrNotComposing
	}
	s.provImage = append([]byte(nil), data...)
	s.provType = contentType
	s.provLoc = loc
	s.provLocSet = true
	return nil
}

// CommitCompose validates the provisional state, mints the entry, and
// appends it to the catalog. On validation failure the composition stays
// open so the user can correct it.
func (s *CatalogService) CommitCompose(title string) (domain.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.composing {
		return domain.CatalogEntry{}, domain.ErrNotComposing
	}

	title = strings.TrimSpace(title)
	if title == "" {
		slog.Warn("commit rejected: empty title")
		return domain.CatalogEntry{}, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if len(s.provImage) == 0 {
		slog.Warn("commit rejected: no image captured", "title", title)
		return domain.CatalogEntry{}, fmt.Errorf("%w: image is required", domain.ErrInvalidInput)
	}

	loc := s.provLoc
	if !s.provLocSet {
		loc = exif.FallbackCoordinate
	}

	entry := domain.CatalogEntry{
		ID:          uuid.NewString(),
		Title:       title,
		Image:       s.provImage,
		ContentType: s.provType,
		CreatedDate: domain.DateOf(s.now()),
		Location:    loc,
	}

	s.store.Replace(append(s.store.Current(), entry))
	s.clearComposeLocked()

	slog.Info("entry added", "id", entry.ID, "title", entry.Title)
	return entry.Clone(), nil
}

// Rename updates the title of the entry with the given id. Every other
// field and the entry's position are untouched.
func (s *CatalogService) Rename(id, newTitle string) error {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		slog.Warn("rename rejected: empty title", "id", id)
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.store.Current()
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Title = newTitle
			s.store.Replace(entries)
			slog.Info("entry renamed", "id", id, "title", newTitle)
			return nil
		}
	}

	slog.Warn("rename rejected: entry not found", "id", id)
	return domain.ErrNotFound
}

// Delete removes the entry with the given id after an affirmative
// confirmation from the decision provider. The confirmation can suspend for
// as long as the user takes; no lock is held across the wait, and nothing
// mutates on cancel, dismissal, or error. Existence is re-checked once the
// decision resolves, since the catalog may have changed in the meantime.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	entry, err := s.Get(id)
	if err != nil {
		slog.Warn("delete rejected: entry not found", "id", id)
		return err
	}

	confirmed, err := s.decisions.ConfirmDelete(ctx, entry)
	if err != nil {
		slog.Info("delete not confirmed", "id", id, "error", err)
		return nil
	}
	if !confirmed {
		slog.Info("delete cancelled", "id", id)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.store.Current()
	kept := entries[:0:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		slog.Warn("delete rejected: entry vanished before confirmation resolved", "id", id)
		return domain.ErrNotFound
	}

	s.store.Replace(kept)
	slog.Info("entry deleted", "id", id, "title", entry.Title)
	return nil
}

func (s *CatalogService) clearComposeLocked() {
	s.composing = false
	s.provImage = nil
	s.provType = ""
	s.provLoc = domain.Coordinate{}
	s.provLocSet = false
}
