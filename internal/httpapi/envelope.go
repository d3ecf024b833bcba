// Package httpapi exposes the five server endpoints over plain
// net/http: /ingest-events, /pattern-detector, /ghost-executor,
// /approve-ghost and /promote-pattern, plus a websocket push (/live) for
// live execution updates.
// Routing uses Go 1.22 method+path mux patterns; every response goes
// through the writeJSON envelope helper.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// envelope is the uniform response shape every handler writes:
// {success, data?, error?{code,message}, meta?{requestId,timestamp}}.
type envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *envelopeError `json:"error,omitempty"`
	Meta    envelopeMeta   `json:"meta"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelopeMeta struct {
	RequestID string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

func newMeta() envelopeMeta {
	return envelopeMeta{RequestID: uuid.NewString(), Timestamp: time.Now()}
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// writeData writes a successful envelope.
func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data, Meta: newMeta()})
}

// writeError writes a failed envelope with the given HTTP status and error code.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, envelope{
		Success: false,
		Error:   &envelopeError{Code: code, Message: message},
		Meta:    newMeta(),
	})
}
