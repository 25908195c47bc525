package handler

import (
	"net/http"

	"github.com/msomdec/photolog/internal/service"
	"github.com/msomdec/photolog/internal/store"
)

// RegisterRoutes sets up all HTTP routes on the given mux. Mutation
// endpoints are rate limited per client.
func RegisterRoutes(mux *http.ServeMux, catalog *service.CatalogService, confirms *service.ConfirmBroker, st *store.Store) {
	ch := NewCatalogHandler(catalog, confirms)
	wh := NewWatchHandler(st)
	limiter := service.NewTokenBucket(5, 20)

	limited := func(h http.HandlerFunc) http.Handler {
		return RateLimit(limiter, h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("GET /entries", ch.HandleList)
	mux.HandleFunc("GET /entries/{id}", ch.HandleGet)
	mux.HandleFunc("GET /entries/{id}/image", ch.HandleImage)
	mux.Handle("PATCH /entries/{id}", limited(ch.HandleRename))
	mux.Handle("DELETE /entries/{id}", limited(ch.HandleDelete))

	mux.Handle("POST /compose", limited(ch.HandleBeginCompose))
	mux.Handle("DELETE /compose", limited(ch.HandleCancelCompose))
	mux.Handle("POST /compose/image", limited(ch.HandleCaptureImage))
	mux.Handle("POST /compose/commit", limited(ch.HandleCommitCompose))

	mux.HandleFunc("GET /confirmations", ch.HandleListConfirmations)
	mux.Handle("POST /confirmations/{token}", limited(ch.HandleResolveConfirmation))

	mux.HandleFunc("GET /watch", wh.HandleWatch)
}
