package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/msomdec/photolog/internal/domain"
	"github.com/msomdec/photolog/internal/service"
)

const maxImageSize = 10 * 1024 * 1024 // 10MB

// CatalogHandler exposes the catalog's CRUD and compose operations over
// HTTP. The forms, lists, and dialogs live on the client; this surface only
// carries their decision outcomes.
type CatalogHandler struct {
	catalog  *service.CatalogService
	confirms *service.ConfirmBroker
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService, confirms *service.ConfirmBroker) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, confirms: confirms}
}

// HandleList returns the current catalog snapshot.
// GET /entries
func (h *CatalogHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toEntryDTOs(h.catalog.Entries()))
}

// HandleGet returns one full entry by value for the detail view.
// GET /entries/{id}
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.catalog.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, toEntryDetailDTO(entry))
}

// HandleImage serves an entry's image bytes with its content type.
// GET /entries/{id}/image
func (h *CatalogHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	entry, err := h.catalog.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", entry.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.Header().Set("Content-Length", strconv.Itoa(len(entry.Image)))
	w.Write(entry.Image)
}

// HandleBeginCompose opens a new composition.
// POST /compose
func (h *CatalogHandler) HandleBeginCompose(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.BeginCompose(); err != nil {
		writeError(w, http.StatusConflict, "composition already in progress")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCancelCompose discards the composition in progress.
// DELETE /compose
func (h *CatalogHandler) HandleCancelCompose(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.CancelCompose(); err != nil {
		writeError(w, http.StatusConflict, "no composition in progress")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCaptureImage attaches an image to the composition in progress.
// POST /compose/image
func (h *CatalogHandler) HandleCaptureImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read upload", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := h.catalog.CaptureImage(data); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotComposing):
			writeError(w, http.StatusConflict, "no composition in progress")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("capture image", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCommitCompose validates and commits the composition.
// POST /compose/commit
func (h *CatalogHandler) HandleCommitCompose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.catalog.CommitCompose(req.Title)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotComposing):
			writeError(w, http.StatusConflict, "no composition in progress")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("commit compose", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// HandleRename updates an entry's title.
// PATCH /entries/{id}
func (h *CatalogHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.catalog.Rename(r.PathValue("id"), req.Title)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "entry not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("rename entry", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete starts a confirmed deletion. The deletion itself runs as a
// suspended continuation waiting on the confirmation endpoint; the response
// carries the token the client must resolve.
// DELETE /entries/{id}
func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.catalog.Get(id); err != nil {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}

	// The decision outlives this request, so the continuation detaches from
	// the request context.
	go func() {
		if err := h.catalog.Delete(context.Background(), id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			slog.Error("delete entry", "id", id, "error", err)
		}
	}()

	pending, ok := h.confirms.WaitForPending(id, time.Second)
	if !ok {
		slog.Error("pending delete confirmation never registered", "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, toPendingDecisionDTO(pending))
}

// HandleListConfirmations lists decisions awaiting an answer.
// GET /confirmations
func (h *CatalogHandler) HandleListConfirmations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toPendingDecisionDTOs(h.confirms.Pending()))
}

// HandleResolveConfirmation answers a pending decision. A missing or false
// confirmed field is an explicit cancel.
// POST /confirmations/{token}
func (h *CatalogHandler) HandleResolveConfirmation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirmed bool `json:"confirmed"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.confirms.Resolve(r.PathValue("token"), req.Confirmed); err != nil {
		writeError(w, http.StatusNotFound, "no such pending confirmation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
