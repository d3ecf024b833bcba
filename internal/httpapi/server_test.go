package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ghostlabs/ghost-core/internal/execution"
	"github.com/ghostlabs/ghost-core/internal/governance/memstore"
	"github.com/ghostlabs/ghost-core/internal/llm"
)

func newTestServer(t *testing.T) (*Server, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	engine := execution.NewEngine(llm.NewStub(), nil, nil, store, nil)
	srv := New(&Server{
		Store:    store,
		Events:   store,
		LLM:      llm.NewStub(),
		Executor: engine,
	})
	return srv, store
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v, body=%s", err, rec.Body.String())
	}
	return env
}

func mustTimestampBucket(t time.Time) string {
	return t.UTC().Truncate(5 * time.Minute).Format(time.RFC3339)
}
