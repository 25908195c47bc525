package handler

import (
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/photolog/internal/domain"
	"github.com/msomdec/photolog/internal/store"
)

// WatchHandler streams catalog snapshots to clients over SSE. Every store
// replacement is pushed as a datastar signal patch for as long as the
// client stays connected.
type WatchHandler struct {
	store *store.Store
}

// NewWatchHandler creates a new WatchHandler.
func NewWatchHandler(st *store.Store) *WatchHandler {
	return &WatchHandler{store: st}
}

// HandleWatch subscribes the client to catalog updates.
// GET /watch
func (h *WatchHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	// Capacity one with drop-oldest: every update carries the full
	// snapshot, so only the latest matters to a lagging client.
	updates := make(chan []domain.CatalogEntry, 1)
	unsubscribe := h.store.Subscribe(func(entries []domain.CatalogEntry) {
		for {
			select {
			case updates <- entries:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	})
	defer unsubscribe()

	// Store subscribers only see future replacements; send the current
	// snapshot before entering the loop.
	if err := pushSnapshot(sse, h.store.Current()); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case entries := <-updates:
			if err := pushSnapshot(sse, entries); err != nil {
				slog.Debug("watch client gone", "error", err)
				return
			}
		}
	}
}

func pushSnapshot(sse *datastar.ServerSentEventGenerator, entries []domain.CatalogEntry) error {
	return sse.MarshalAndPatchSignals(map[string]any{
		"imageList": toEntryDTOs(entries),
	})
}
