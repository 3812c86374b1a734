// Package swaggerkit serves the swagger UI and the decorated OpenAPI doc
package swaggerkit

import (
	"encoding/json"
	"net/http"

	"devquest/internal/platform/logger"
	phttp "devquest/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag/v2"
)

// Mount serves the UI under /api/docs when enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDoc)
	r.Handle("/api/docs/*", httpSwagger.Handler(httpSwagger.URL("/api/docs/doc.json")))
}

func serveDoc(w http.ResponseWriter, _ *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		logger.Named("swagger").Error().Err(err).Msg("no registered doc")
		http.Error(w, "spec missing", http.StatusInternalServerError)
		return
	}
	var spec map[string]any
	if err := json.Unmarshal([]byte(doc), &spec); err != nil {
		logger.Named("swagger").Error().Err(err).Msg("generated doc is not json")
		http.Error(w, "spec parse error", http.StatusInternalServerError)
		return
	}
	decorate(spec, "/api/v1")
	w.Header().Set("Cache-Control", "no-store")
	phttp.WriteJSON(w, http.StatusOK, spec)
}
