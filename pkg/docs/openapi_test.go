package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONHandler_RendersTemplate(t *testing.T) {
	SetHost("", "0.0.0.0", "8080")
	rec := httptest.NewRecorder()
	JSONHandler(rec, httptest.NewRequest(http.MethodGet, "/swagger/swagger.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Host     string                     `json:"host"`
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "0.0.0.0:8080", doc.Host)
	require.Equal(t, "/", doc.BasePath)
	require.Contains(t, doc.Paths, "/{id}")
	require.Contains(t, doc.Paths, "/ws/{id}")
}

func TestAdvertisedHost(t *testing.T) {
	require.Equal(t, "api.example.com", advertisedHost("api.example.com", "0.0.0.0", "443"))
	require.Equal(t, "api.example.com:9000", advertisedHost("api.example.com", "0.0.0.0", "9000"))
	require.Equal(t, "edge:7000", advertisedHost("edge:7000", "0.0.0.0", "9000"))
	require.Equal(t, "0.0.0.0:8080", advertisedHost("", "0.0.0.0", "8080"))
	require.Equal(t, "[::1]:8080", advertisedHost("", "::1", "8080"))
}
