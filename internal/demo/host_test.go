package demo_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/a2ui-go/a2ui/internal/demo"
	"github.com/a2ui-go/a2ui/internal/transport"
)

func TestServeStream_ReplaysInitialEnvelopes(t *testing.T) {
	h := demo.NewHost(demo.CounterListScenario)
	srv := httptest.NewServer(http.HandlerFunc(h.ServeStream))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	var dataLines int
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data:") {
			dataLines++
		}
		if dataLines >= len(demo.CounterListScenario.Initial) {
			break
		}
	}
	if dataLines != len(demo.CounterListScenario.Initial) {
		t.Errorf("got %d initial data lines, want %d", dataLines, len(demo.CounterListScenario.Initial))
	}
}

func TestServeAction_Increment(t *testing.T) {
	h := demo.NewHost(demo.CounterListScenario)
	srv := httptest.NewServer(http.HandlerFunc(h.ServeAction))
	defer srv.Close()

	reqBody, _ := json.Marshal(map[string]any{
		"name":              "increment",
		"surfaceId":         "main",
		"sourceComponentId": "incrementButton",
		"timestamp":         "2026-07-30T00:00:00Z",
	})
	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(string(reqBody)))
	if err != nil {
		t.Fatalf("POST action: %v", err)
	}
	defer resp.Body.Close()

	var out transport.ActionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success {
		t.Errorf("Success = false, Error = %q", out.Error)
	}
	if out.DataUpdate == nil || out.DataUpdate.Path != "/count" {
		t.Errorf("DataUpdate = %+v, want a /count value update", out.DataUpdate)
	}
}

func TestServeAction_AddItem(t *testing.T) {
	h := demo.NewHost(demo.CounterListScenario)
	srv := httptest.NewServer(http.HandlerFunc(h.ServeAction))
	defer srv.Close()

	reqBody, _ := json.Marshal(map[string]any{
		"name":      "addItem",
		"surfaceId": "main",
		"context":   map[string]any{"label": "Gamma"},
	})
	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(string(reqBody)))
	if err != nil {
		t.Fatalf("POST action: %v", err)
	}
	defer resp.Body.Close()

	var out transport.ActionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success {
		t.Fatalf("Success = false, Error = %q", out.Error)
	}
	if out.DataUpdate == nil || out.DataUpdate.Path != "/items" {
		t.Fatalf("DataUpdate = %+v, want an /items replace", out.DataUpdate)
	}
	if len(out.DataUpdate.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(out.DataUpdate.Items))
	}
	item := out.DataUpdate.Items[0]
	if item.ID == "" {
		t.Error("item.ID is empty")
	}
	if item.Fields["label"] != "Gamma" {
		t.Errorf("item.Fields[label] = %v, want Gamma", item.Fields["label"])
	}
}

func TestServeAction_UnknownAction(t *testing.T) {
	h := demo.NewHost(demo.CounterListScenario)
	srv := httptest.NewServer(http.HandlerFunc(h.ServeAction))
	defer srv.Close()

	reqBody, _ := json.Marshal(map[string]any{
		"name":      "doesNotExist",
		"surfaceId": "main",
	})
	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(string(reqBody)))
	if err != nil {
		t.Fatalf("POST action: %v", err)
	}
	defer resp.Body.Close()

	var out transport.ActionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Success {
		t.Error("Success = true for an unknown action")
	}
}
