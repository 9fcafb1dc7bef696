// Package demo implements a scripted reference server that exercises every
// message kind and the action round trip, standing in for the six worked
// scenarios the protocol narrative walks through end to end (spec.md §8.3):
// static content, two-way binding, template list expansion, dirty-path
// protection against server overwrite, action dispatch with resolved
// context, and reconnect recovery.
package demo

import (
	"encoding/json"

	"github.com/a2ui-go/a2ui/internal/transport"
	"github.com/google/uuid"
)

// Envelope is one raw protocol message this host can push, kept as a
// literal JSON string for readability in the scenario script below.
type Envelope string

// ActionHandler reacts to a POSTed action and returns zero or more envelopes
// to broadcast to every connected stream, plus an optional DataUpdate
// returned directly in the ActionResponse (spec.md §4.4 step 3).
type ActionHandler func(h *Host, req transport.ActionRequest) (broadcast []Envelope, dataUpdate *transport.DataUpdate, err error)

// Scenario is the scripted content one demo server instance replays.
type Scenario struct {
	Name    string
	Initial []Envelope
	Actions map[string]ActionHandler
}

// CounterListScenario exercises S1 (static content), S2 (two-way bound
// counter), S3 (template list expansion over a data-bound list), S4 (dirty
// path protection: typing in the name field survives a server refresh), and
// S5 (action dispatch with resolved context) in one surface.
var CounterListScenario = Scenario{
	Name: "counter-list",
	Initial: []Envelope{
		`{"surfaceUpdate":{"surfaceId":"main","components":[
			{"id":"root","component":{"Column":{"children":{"explicitList":["title","nameField","counterRow","list"]}}}},
			{"id":"title","component":{"Text":{"text":{"literalString":"a2ui demo"}}}},
			{"id":"nameField","component":{"TextField":{"text":{"path":"name"},"label":{"literalString":"Your name"}}}},
			{"id":"counterRow","component":{"Row":{"children":{"explicitList":["counterLabel","incrementButton"]}}}},
			{"id":"counterLabel","component":{"Text":{"text":{"path":"count"}}}},
			{"id":"incrementButton","component":{"Button":{"child":"incrementLabel","action":{"name":"increment"}}}},
			{"id":"incrementLabel","component":{"Text":{"text":{"literalString":"+1"}}}},
			{"id":"list","component":{"List":{"children":{"template":{"componentId":"row","dataBinding":"items"}}}}},
			{"id":"row","component":{"Text":{"text":{"path":"label"}}}}
		]}}`,
		`{"dataModelUpdate":{"surfaceId":"main","contents":[
			{"key":"name","valueString":"anonymous"},
			{"key":"count","valueNumber":0},
			{"key":"items","valueMap":[
				{"key":"0","valueMap":[{"key":"label","valueString":"Alpha"}]},
				{"key":"1","valueMap":[{"key":"label","valueString":"Beta"}]}
			]}
		]}}`,
		`{"beginRendering":{"surfaceId":"main","root":"root"}}`,
	},
	Actions: map[string]ActionHandler{
		"increment": handleIncrement,
		"addItem":   handleAddItem,
	},
}

// handleIncrement broadcasts the new count to every connected stream (the
// async-delivery half of spec.md §9's either/or) and also answers inline
// with a DataUpdate.Value write, so the acting client sees its own effect
// without waiting on the SSE round trip.
func handleIncrement(h *Host, req transport.ActionRequest) ([]Envelope, *transport.DataUpdate, error) {
	h.mu.Lock()
	h.counter++
	count := h.counter
	h.mu.Unlock()

	patch := Envelope(`{"dataModelUpdate":{"surfaceId":"main","contents":[{"key":"count","valueNumber":` +
		formatFloat(count) + `}]}}`)
	countJSON, _ := json.Marshal(count)
	return []Envelope{patch}, &transport.DataUpdate{Path: "/count", Value: countJSON}, nil
}

// handleAddItem exercises the DataUpdate.Items worked example directly
// (spec.md §8.3 S5): every call answers with the full current /items list,
// each row carrying its id plus label and a synthetic rowId, which the
// bridge applies by clearing /items' existing children and rewriting one
// entry per item.
func handleAddItem(h *Host, req transport.ActionRequest) ([]Envelope, *transport.DataUpdate, error) {
	label, _ := req.Context["label"].(string)
	if label == "" {
		label = "New item"
	}
	h.mu.Lock()
	h.itemSeq++
	h.items = append(h.items, itemRecord{
		ID:    itoa(h.itemSeq),
		Label: label,
		RowID: uuid.NewString(),
	})
	items := make([]transport.DataUpdateItem, len(h.items))
	for i, it := range h.items {
		items[i] = transport.DataUpdateItem{
			ID:     it.ID,
			Fields: map[string]any{"label": it.Label, "rowId": it.RowID},
		}
	}
	h.mu.Unlock()

	return nil, &transport.DataUpdate{Path: "/items", Items: items}, nil
}
