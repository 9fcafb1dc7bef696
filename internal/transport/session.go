// Package transport implements the SDUP session controller: an SSE client
// that streams protocol envelopes from a host, reconnects with backoff, and
// posts user actions back (spec.md §5, §6).
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a2ui-go/a2ui/internal/schema"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/a2ui-go/a2ui/internal/transport")

// Session owns one long-lived SSE connection to a host and the action POST
// channel back to it (spec.md §5). It is not safe for concurrent use of
// Run by more than one goroutine; SendAction may be called concurrently
// with Run from any goroutine.
type Session struct {
	StreamURL      string
	ActionURL      string
	ReconnectDelay time.Duration
	Client         *http.Client
	Observer       Observer

	// SurfaceID, when set, scopes this Session's stream connection to one
	// surface: it is appended to StreamURL as a `surfaceId` query parameter
	// (spec.md §4.4, §6.1). Left empty, the Session opens one shared,
	// unscoped connection and relies on the Observer to filter incoming
	// messages by their own SurfaceID — also spec-legitimate (§6.1: "the
	// runtime filters by surfaceId regardless" of how the server multiplexes
	// surfaces onto endpoints).
	SurfaceID string
}

// NewSession constructs a Session with an http.Client timeout suitable for a
// long-poll SSE GET (no per-request deadline; the context governs lifetime).
func NewSession(streamURL, actionURL string, reconnectDelay time.Duration, observer Observer) *Session {
	return &Session{
		StreamURL:      streamURL,
		ActionURL:      actionURL,
		ReconnectDelay: reconnectDelay,
		Client:         &http.Client{},
		Observer:       observer,
	}
}

// Run connects to StreamURL and processes events until ctx is canceled. On
// any connection error it notifies the Observer, waits ReconnectDelay, and
// reconnects — this loop only returns when ctx is done (spec.md §5's
// reconnect-forever policy; the caller decides when to give up, e.g. by
// canceling ctx after N failures if it wants a bounded retry budget).
func (s *Session) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := s.connectOnce(ctx)
		s.Observer.OnDisconnect(err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-time.After(s.ReconnectDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// streamURL returns the GET target for one connection attempt: StreamURL,
// with SurfaceID appended as a `surfaceId` query parameter when set,
// joining with `&` if StreamURL already carries a query string and `?`
// otherwise (spec.md §6.1).
func (s *Session) streamURL() string {
	if s.SurfaceID == "" {
		return s.StreamURL
	}
	sep := "?"
	if strings.Contains(s.StreamURL, "?") {
		sep = "&"
	}
	return s.StreamURL + sep + "surfaceId=" + url.QueryEscape(s.SurfaceID)
}

func (s *Session) connectOnce(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "transport.connect")
	defer span.End()

	streamURL := s.streamURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.Client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("connect stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("stream returned status %d", resp.StatusCode)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	log.Info().Str("url", streamURL).Msg("a2ui: transport connected")
	s.Observer.OnConnect()

	reader := newSSEReader(resp.Body)
	for {
		ev, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil // clean server-initiated close
		}
		if err != nil {
			return err
		}
		if ev.Data == "" {
			continue // keepalive comment frame or empty heartbeat event
		}
		s.dispatch(ctx, ev)
	}
}

func (s *Session) dispatch(ctx context.Context, ev sseEvent) {
	_, span := tracer.Start(ctx, "transport.dispatch")
	defer span.End()
	msg, verr := schema.DecodeEnvelope([]byte(ev.Data))
	if verr != nil {
		log.Warn().Str("surfaceId", msg.SurfaceID()).Err(verr).Msg("a2ui: message validation issues")
		s.Observer.OnValidationError(verr)
	}
	s.Observer.OnMessage(msg)
}

// SendAction posts an action to ActionURL and returns the decoded response.
// It does not itself apply the response's DataUpdate or patch bags — that is
// the bridge layer's job (internal/bridge.Provider.Dispatch), which has the
// data model to apply them against.
func (s *Session) SendAction(ctx context.Context, req ActionRequest) (*ActionResponse, error) {
	requestID := uuid.New().String()
	ctx, span := tracer.Start(ctx, "transport.send_action")
	defer span.End()
	span.SetAttributes(
		attribute.String("a2ui.surface_id", req.SurfaceID),
		attribute.String("a2ui.action", req.Name),
		attribute.String("a2ui.request_id", requestID),
	)

	body, err := json.Marshal(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("encode action request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ActionURL, bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("build action request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := s.Client.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.Observer.OnActionError(err)
		return nil, fmt.Errorf("post action: %w", err)
	}
	defer resp.Body.Close()

	var actionResp ActionResponse
	if err := json.NewDecoder(resp.Body).Decode(&actionResp); err != nil {
		span.RecordError(err)
		s.Observer.OnActionError(err)
		return nil, fmt.Errorf("decode action response: %w", err)
	}

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("action endpoint returned status %d: %s", resp.StatusCode, actionResp.Error)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.Observer.OnActionError(err)
		return &actionResp, err
	}

	// A 2xx status with success:false in the body is also an error (spec.md
	// §6.2): the HTTP layer accepted the request, but the action itself
	// failed.
	if !actionResp.Success {
		err := fmt.Errorf("action %q failed: %s", req.Name, actionResp.Error)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.Observer.OnActionError(err)
		return &actionResp, err
	}

	return &actionResp, nil
}
