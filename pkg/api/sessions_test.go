package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shuliakovsky/signal-directory/pkg/kv"
	"github.com/shuliakovsky/signal-directory/pkg/sessions"
)

const minimalSDP = "v=0\r\no=- 4215775240449105457 2 IN IP4 127.0.0.1\r\ns=-\r\nt=0 0\r\n"

func newTestServer(t *testing.T, store SessionStore) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	s := NewSessions(store, logger)
	ws := NewWS(store, 10*time.Millisecond, 4, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"ok"`))
	})
	Mount(mux, s, ws)
	srv := httptest.NewServer(Handler(mux))
	t.Cleanup(srv.Close)
	return srv
}

func newMemoryStore() *sessions.Store {
	return sessions.NewStore(kv.NewMemory(), sessions.Options{})
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestSessionsAPI_Lifecycle(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())

	resp, body := do(t, http.MethodGet, srv.URL+"/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `[]`, body)

	resp, body = do(t, http.MethodGet, srv.URL+"/room", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, body, `"kind":"not_found"`)

	resp, body = do(t, http.MethodPost, srv.URL+"/room", `{"peer_id":"myid","offer":{"type":"type1","sdp":"sdp_example"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `[{"peer_id":"myid","offer":{"type":"type1","sdp":"sdp_example"}}]`, body)

	resp, _ = do(t, http.MethodPost, srv.URL+"/room", `{"peer_id":"other","offer":{"type":"answer","sdp":"x"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/room", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got sessions.Session
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	require.Len(t, got, 2)
	require.Equal(t, "myid", got[0].PeerID)
	require.Equal(t, "other", got[1].PeerID)

	resp, body = do(t, http.MethodGet, srv.URL+"/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `["room"]`, body)

	resp, body = do(t, http.MethodDelete, srv.URL+"/room", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"deleted":true}`, body)

	resp, body = do(t, http.MethodDelete, srv.URL+"/room", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"deleted":false}`, body)
}

func TestSessionsAPI_CORSHeaders(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())

	for _, method := range []string{http.MethodGet, http.MethodOptions} {
		resp, _ := do(t, method, srv.URL+"/room", "")
		require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"), method)
		require.Equal(t, "GET, POST, OPTIONS, PUT, DELETE", resp.Header.Get("Access-Control-Allow-Methods"), method)
		require.Equal(t, "86400", resp.Header.Get("Access-Control-Max-Age"), method)
		require.Equal(t, "application/json", resp.Header.Get("Content-Type"), method)
		require.NotEmpty(t, resp.Header.Get(RequestIDHeader), method)
	}

	resp, body := do(t, http.MethodOptions, srv.URL+"/room", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `"success"`, body)
}

func TestSessionsAPI_RequestIDEchoed(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
}

func TestSessionsAPI_BadBodies(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())

	for name, body := range map[string]string{
		"empty":      ``,
		"not json":   `peer`,
		"no peer_id": `{"offer":{"type":"offer","sdp":"x"}}`,
	} {
		resp, out := do(t, http.MethodPost, srv.URL+"/room", body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
		require.Contains(t, out, `"kind":"invalid_input"`, name)
	}

	resp, _ := do(t, http.MethodGet, srv.URL+"/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/room", `{"peer_id":"`+strings.Repeat("x", 70<<10)+`"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestSessionsAPI_Unmatched(t *testing.T) {
	srv := newTestServer(t, newMemoryStore())
	resp, body := do(t, http.MethodGet, srv.URL+"/a/b/c", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.JSONEq(t, `{"error":"nothing to see here"}`, body)

	resp, _ = do(t, http.MethodGet, srv.URL+"/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionsAPI_StrictOffers(t *testing.T) {
	logger := zap.NewNop()
	s := NewSessions(newMemoryStore(), logger)
	s.ValidateSDP = true
	mux := http.NewServeMux()
	Mount(mux, s, NewWS(s.Store, 10*time.Millisecond, 1, logger))

	post := func(body string) int {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/room", strings.NewReader(body)))
		return rec.Code
	}
	offer, _ := json.Marshal(sessions.Peer{PeerID: "a", Offer: sessions.Offer{Type: "offer", SDP: minimalSDP}})
	require.Equal(t, http.StatusOK, post(string(offer)))
	require.Equal(t, http.StatusBadRequest, post(`{"peer_id":"b","offer":{"type":"type1","sdp":"sdp_example"}}`))
	require.Equal(t, http.StatusBadRequest, post(`{"peer_id":"c","offer":{"type":"offer","sdp":"garbage"}}`))
}

type stubStore struct {
	SessionStore
	err error
}

func (s stubStore) GetSession(context.Context, string) (sessions.Session, error) { return nil, s.err }
func (s stubStore) JoinSession(context.Context, string, sessions.Peer) (sessions.Session, error) {
	return nil, s.err
}

func TestSessionsAPI_ErrorMapping(t *testing.T) {
	cases := []struct {
		kind sessions.Kind
		code int
	}{
		{sessions.KindNotFound, http.StatusNotFound},
		{sessions.KindDecode, http.StatusInternalServerError},
		{sessions.KindConcurrentModification, http.StatusConflict},
		{sessions.KindStoreUnavailable, http.StatusServiceUnavailable},
		{sessions.KindInvalidInput, http.StatusBadRequest},
	}
	for _, c := range cases {
		t.Run(c.kind.String(), func(t *testing.T) {
			srv := newTestServer(t, stubStore{err: &sessions.Error{Kind: c.kind, Op: "test"}})
			resp, body := do(t, http.MethodGet, srv.URL+"/room", "")
			require.Equal(t, c.code, resp.StatusCode)
			require.Contains(t, body, c.kind.String())

			resp, _ = do(t, http.MethodPost, srv.URL+"/room", `{"peer_id":"a","offer":{}}`)
			require.Equal(t, c.code, resp.StatusCode)
		})
	}
}

func TestSessionsAPI_RejectedJoinsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s := NewSessions(newMemoryStore(), zap.New(core))
	s.MaxBody = 16
	mux := http.NewServeMux()
	Mount(mux, s, NewWS(s.Store, 10*time.Millisecond, 1, zap.NewNop()))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/room", strings.NewReader(`{"peer_id":"far-too-long-for-the-limit"}`)))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	require.Equal(t, 1, logs.FilterMessage("join_request").Len())
	resp := logs.FilterMessage("join_response").All()
	require.Len(t, resp, 1)
	require.EqualValues(t, http.StatusRequestEntityTooLarge, resp[0].ContextMap()["status"])
}
