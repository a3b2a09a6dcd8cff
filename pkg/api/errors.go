package api

import (
	"encoding/json"
	"net/http"

	"github.com/shuliakovsky/signal-directory/pkg/sessions"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// StatusFor maps a store error kind to the HTTP status returned to callers.
func StatusFor(err error) int {
	switch sessions.KindOf(err) {
	case sessions.KindInvalidInput:
		return http.StatusBadRequest
	case sessions.KindNotFound:
		return http.StatusNotFound
	case sessions.KindConcurrentModification:
		return http.StatusConflict
	case sessions.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) int {
	code := StatusFor(err)
	writeJSON(w, code, errorBody{Error: err.Error(), Kind: sessions.KindOf(err).String()})
	return code
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: "nothing to see here"})
}
