package goJWS

import (
	"context"
	"errors"

	internalaudit "github.com/MrEthical07/goJWS/internal/audit"
	"github.com/MrEthical07/goJWS/jws"
	"github.com/MrEthical07/goJWS/jwt"
)

const (
	auditEventTokenIssued      = internalaudit.EventTokenIssued
	auditEventTokenSigned      = internalaudit.EventTokenSigned
	auditEventTokenVerified    = internalaudit.EventTokenVerified
	auditEventTokenRejected    = internalaudit.EventTokenRejected
	auditEventTokenRevoked     = internalaudit.EventTokenRevoked
	auditEventRateLimitTripped = internalaudit.EventRateLimitTripped
)

// AuditErrorCode is the stable failure label written into audit events.
type AuditErrorCode string

const (
	auditErrParse             AuditErrorCode = "parse"
	auditErrAlgorithmNotFound AuditErrorCode = "algorithm_not_found"
	auditErrKeyMismatch       AuditErrorCode = "key_mismatch"
	auditErrKeyResolution     AuditErrorCode = "key_resolution"
	auditErrSignatureInvalid  AuditErrorCode = "signature_invalid"
	auditErrClaimInvalid      AuditErrorCode = "claim_invalid"
	auditErrCustomValidation  AuditErrorCode = "custom_validation"
	auditErrRateLimited       AuditErrorCode = "rate_limited"
	auditErrUnavailable       AuditErrorCode = "backend_unavailable"
	auditErrInternal          AuditErrorCode = "internal_error"
)

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}
	switch jwt.KindOf(err) {
	case jwt.KindParse:
		return auditErrParse
	case jwt.KindAlgorithmNotFound:
		return auditErrAlgorithmNotFound
	case jwt.KindAlgorithmKeyMismatch:
		return auditErrKeyMismatch
	case jwt.KindKeyResolution:
		return auditErrKeyResolution
	case jwt.KindSignatureInvalid:
		return auditErrSignatureInvalid
	case jwt.KindClaimInvalid:
		return auditErrClaimInvalid
	case jwt.KindCustomValidation:
		return auditErrCustomValidation
	}
	switch {
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

func (e *Engine[C]) emitAudit(
	ctx context.Context,
	eventType string,
	header jws.Header,
	claims jwt.RegisteredClaims,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.clock().UTC(),
		EventType: eventType,
		Subject:   claims.Subject,
		TokenID:   claims.ID,
		KeyID:     header.KeyID,
		Algorithm: header.Algorithm,
		ClientIP:  clientIPFromContext(ctx),
		Success:   err == nil,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}
