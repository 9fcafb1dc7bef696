package transport

import (
	"github.com/a2ui-go/a2ui/internal/schema"
	"github.com/rs/zerolog/log"
)

// Observer receives transport lifecycle and protocol events (spec.md §5,
// §6.4). Implementations must not block: Session delivers events
// synchronously from its read loop, and a slow observer stalls message
// processing for every surface on the connection.
type Observer interface {
	// OnConnect fires once the SSE stream is established (or re-established).
	OnConnect()

	// OnDisconnect fires when the stream drops, before a reconnect attempt is
	// scheduled. err is nil on a clean server-initiated close.
	OnDisconnect(err error)

	// OnMessage fires for every successfully decoded protocol envelope,
	// regardless of whether it carried validation issues (spec.md §4.2's
	// best-effort application policy — the message is still delivered).
	OnMessage(msg schema.Message)

	// OnValidationError fires alongside OnMessage when DecodeEnvelope reports
	// issues, so hosts can log or surface them without rejecting the message.
	OnValidationError(verr *schema.ValidationError)

	// OnActionError fires when SendAction's POST fails, its response body
	// cannot be decoded, the server returns a non-2xx status, or a 2xx body
	// reports success:false.
	OnActionError(err error)
}

// NopObserver implements Observer with no-op methods, for embedding in
// partial observers that only care about a subset of events.
type NopObserver struct{}

func (NopObserver) OnConnect()                               {}
func (NopObserver) OnDisconnect(error)                        {}
func (NopObserver) OnMessage(schema.Message)                  {}
func (NopObserver) OnValidationError(*schema.ValidationError) {}
func (NopObserver) OnActionError(error)                       {}

// LoggingObserver logs every event through the global zerolog logger. Useful
// as a default when a host hasn't wired up its own Observer (e.g. bridge.Dispatcher)
// yet wants connection/error visibility during development.
type LoggingObserver struct{}

func (LoggingObserver) OnConnect() {
	log.Info().Msg("a2ui: stream connected")
}

func (LoggingObserver) OnDisconnect(err error) {
	log.Warn().Err(err).Msg("a2ui: stream disconnected")
}

func (LoggingObserver) OnMessage(msg schema.Message) {
	log.Debug().Str("kind", msg.Kind.String()).Str("surfaceId", msg.SurfaceID()).Msg("a2ui: message received")
}

func (LoggingObserver) OnValidationError(verr *schema.ValidationError) {
	log.Warn().Err(verr).Msg("a2ui: message failed validation")
}

func (LoggingObserver) OnActionError(err error) {
	log.Error().Err(err).Msg("a2ui: action failed")
}
