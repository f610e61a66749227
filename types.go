package goJWS

import (
	"io"
	"log/slog"

	internalaudit "github.com/MrEthical07/goJWS/internal/audit"
	"github.com/MrEthical07/goJWS/jwt"
)

// Claims is a token payload with extension claims of type C.
type Claims[C any] = jwt.Claims[C]

// Token is a verified token.
type Token[C any] = jwt.Token[C]

// Validator checks a verified token.
type Validator[C any] = jwt.Validator[C]

// KeyResolver supplies verification keys.
type KeyResolver = jwt.KeyResolver

type jwtKind = jwt.Kind

const (
	kindParse            = jwt.KindParse
	kindAlgNotFound      = jwt.KindAlgorithmNotFound
	kindKeyMismatch      = jwt.KindAlgorithmKeyMismatch
	kindKeyResolution    = jwt.KindKeyResolution
	kindSignatureInvalid = jwt.KindSignatureInvalid
	kindClaimInvalid     = jwt.KindClaimInvalid
	kindCustomValidation = jwt.KindCustomValidation
)

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON-encoded event per line to an io.Writer.
type JSONWriterSink = internalaudit.JSONWriterSink

// LoggerSink writes events as structured log records.
type LoggerSink = internalaudit.LoggerSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewLoggerSink creates a [LoggerSink] writing to logger.
func NewLoggerSink(logger *slog.Logger) *LoggerSink {
	return internalaudit.NewLoggerSink(logger)
}

