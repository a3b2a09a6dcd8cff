package api

import "net/http"

// Mount registers the session routes on mux. Fixed routes registered
// elsewhere (/healthz, /metrics) take precedence over /{id}.
func Mount(mux *http.ServeMux, s *Sessions, ws *WS) {
	mux.HandleFunc("GET /{$}", s.List)
	mux.HandleFunc("GET /{id}", s.Get)
	mux.HandleFunc("POST /{id}", s.Join)
	mux.HandleFunc("DELETE /{id}", s.Delete)
	mux.HandleFunc("GET /ws/{id}", ws.ServeWS)
	mux.HandleFunc("/", notFound)
}
