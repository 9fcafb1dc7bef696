package demo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/a2ui-go/a2ui/internal/transport"
	"github.com/rs/zerolog/log"
)

// Host serves one Scenario over HTTP: a GET stream endpoint that pushes the
// scenario's initial envelopes then relays whatever later actions broadcast,
// and a POST action endpoint that runs the matching ActionHandler. It is the
// server side of the transport this module's client half (internal/transport)
// consumes — nothing upstream provided one, so this is the reference emitter
// used by cmd/demoserver and the end-to-end tests.
type Host struct {
	scenario Scenario

	mu          sync.Mutex
	subscribers map[int]chan Envelope
	nextSubID   int
	counter     float64
	itemSeq     int
	items       []itemRecord
}

// itemRecord is one row of the demo's /items list, tracked server-side so
// handleAddItem can answer with the full current list on every call, per
// DataUpdate.Items' replace-on-write semantics (spec.md §4.4 step 3).
type itemRecord struct {
	ID    string
	Label string
	RowID string
}

// NewHost constructs a Host replaying scenario.
func NewHost(scenario Scenario) *Host {
	return &Host{
		scenario:    scenario,
		subscribers: make(map[int]chan Envelope),
	}
}

func (h *Host) subscribe() (int, chan Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSubID
	h.nextSubID++
	ch := make(chan Envelope, 16)
	h.subscribers[id] = ch
	return id, ch
}

func (h *Host) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
}

func (h *Host) broadcast(envs []Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, env := range envs {
		for _, ch := range h.subscribers {
			select {
			case ch <- env:
			default:
				log.Warn().Msg("demo: subscriber channel full, dropping envelope")
			}
		}
	}
}

// ServeStream implements the SSE producer side of the session stream: the
// mirror image of transport.Session's consumer. Every new connection replays
// the scenario's initial envelopes before joining the live broadcast feed,
// so a reconnecting client always gets back to a fully rendered surface
// (spec.md §3.4's no-lost-state-on-reconnect guarantee, from the server's
// side this time).
func (h *Host) ServeStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	id, ch := h.subscribe()
	defer h.unsubscribe(id)

	for _, env := range h.scenario.Initial {
		writeSSE(w, env)
	}
	flusher.Flush()

	ctx := r.Context()
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, env)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, env Envelope) {
	// Scenario literals span several lines; compact each one so the whole
	// envelope travels on a single data: line.
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(env)); err != nil {
		buf.Reset()
		buf.WriteString(string(env))
	}
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", buf.String())
}

// ServeAction implements the action-receiver side of the protocol (spec.md
// §4.4, §6.2): decode the posted ActionRequest, run its handler, broadcast
// whatever the handler produces to every connected stream, and answer with
// a success/error outcome plus an optional inline DataUpdate.
func (h *Host) ServeAction(w http.ResponseWriter, r *http.Request) {
	var req transport.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	handler, ok := h.scenario.Actions[req.Name]
	if !ok {
		writeActionResponse(w, &transport.ActionResponse{
			Success: false,
			Error:   "unknown action: " + req.Name,
		})
		return
	}

	broadcastEnvs, dataUpdate, err := handler(h, req)
	if err != nil {
		writeActionResponse(w, &transport.ActionResponse{Success: false, Error: err.Error()})
		return
	}
	h.broadcast(broadcastEnvs)

	writeActionResponse(w, &transport.ActionResponse{Success: true, DataUpdate: dataUpdate})
}

func writeActionResponse(w http.ResponseWriter, resp *transport.ActionResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
