package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind identifies a domain error category. Kinds are stable API values:
// clients switch on them and the transport layer maps them to HTTP statuses.
type Kind string

const (
	// Lifecycle and persistence kinds.
	KindNotFound              Kind = "NotFound"
	KindDuplicateEntity       Kind = "DuplicateEntity"
	KindRelatedEntityNotFound Kind = "RelatedEntityNotFound"
	KindRelationshipViolation Kind = "RelationshipViolation"
	KindArchiveDependency     Kind = "ArchiveDependency"
	KindEntityInUse           Kind = "EntityInUse"
	KindCascadeDeletion       Kind = "CascadeDeletion"
	KindNullFKMisconfigured   Kind = "NullFKMisconfigured"
	KindUnimplementedGatherer Kind = "UnimplementedGatherer"

	// Input validation kinds.
	KindEmpty               Kind = "Empty"
	KindBlank               Kind = "Blank"
	KindTooShort            Kind = "TooShort"
	KindTooLong             Kind = "TooLong"
	KindInvalidCharacter    Kind = "InvalidCharacter"
	KindInvalidPhone        Kind = "InvalidPhone"
	KindInvalidEmail        Kind = "InvalidEmail"
	KindFutureDate          Kind = "FutureDate"
	KindPastDate            Kind = "PastDate"
	KindInvalidYear         Kind = "InvalidYear"
	KindInvalidSessionYear  Kind = "InvalidSessionYear"
	KindInvalidCode         Kind = "InvalidCode"
	KindInvalidValidityYear Kind = "InvalidValidityYear"
	KindPasswordFormat      Kind = "PasswordFormat"
	KindInvalidOrder        Kind = "InvalidOrder"

	// Authentication kinds.
	KindInvalidCredentials   Kind = "InvalidCredentials"
	KindWrongPassword        Kind = "WrongPassword"
	KindTokenInvalid         Kind = "TokenInvalid"
	KindTokenExpired         Kind = "TokenExpired"
	KindTokenRevoked         Kind = "TokenRevoked"
	KindResetLinkExpired     Kind = "ResetLinkExpired"
	KindAccessTokenRequired  Kind = "AccessTokenRequired"
	KindRefreshTokenRequired Kind = "RefreshTokenRequired"
	KindUserNotFound         Kind = "UserNotFound"
	KindForbidden            Kind = "Forbidden"

	// Infrastructure kinds.
	KindConnection  Kind = "Connection"
	KindUnavailable Kind = "Unavailable"
	KindInternal    Kind = "Internal"
)

// Error is the typed domain error carried through every layer. Message is the
// short user-facing sentence; LogMessage carries the entity kind, identifier
// and underlying detail and is never sent to clients.
type Error struct {
	Kind       Kind                   `json:"kind"`
	Status     int                    `json:"-"`
	Message    string                 `json:"message"`
	LogMessage string                 `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Err        error                  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.LogMessage
	if msg == "" {
		msg = e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithDetail attaches a structured detail entry and returns the error.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates an Error with the given kind, status and user message.
func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

// Wrap attaches a cause and diagnostic context to a new Error.
func Wrap(err error, kind Kind, status int, message, logMessage string) *Error {
	return &Error{Kind: kind, Status: status, Message: message, LogMessage: logMessage, Err: err}
}

// NotFound reports a missing entity in the requested view.
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:       KindNotFound,
		Status:     http.StatusNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		LogMessage: fmt.Sprintf("%s with id %s not found", entity, id),
		Details:    map[string]interface{}{"entity": entity, "id": id},
	}
}

// Duplicate reports a unique constraint hit mapped to a concrete field.
func Duplicate(entity, field, value string) *Error {
	return &Error{
		Kind:       KindDuplicateEntity,
		Status:     http.StatusConflict,
		Message:    fmt.Sprintf("a %s with this %s already exists", entity, field),
		LogMessage: fmt.Sprintf("duplicate %s: %s=%q", entity, field, value),
		Details:    map[string]interface{}{"entity": entity, "field": field, "value": value},
	}
}

// RelatedNotFound reports an FK violation for a referenced entity that does
// not exist or is archived.
func RelatedNotFound(entity, id, operation string) *Error {
	return &Error{
		Kind:       KindRelatedEntityNotFound,
		Status:     http.StatusConflict,
		Message:    fmt.Sprintf("the referenced %s does not exist", entity),
		LogMessage: fmt.Sprintf("%s: referenced %s %s missing or archived", operation, entity, id),
		Details:    map[string]interface{}{"entity": entity, "id": id, "operation": operation},
	}
}

// RelationshipViolation is the fallback FK error when constraint mapping fails.
func RelationshipViolation(entity, operation string) *Error {
	return &Error{
		Kind:       KindRelationshipViolation,
		Status:     http.StatusConflict,
		Message:    fmt.Sprintf("%s could not be completed because of a related record", operation),
		LogMessage: fmt.Sprintf("unmapped fk violation on %s during %s", entity, operation),
		Details:    map[string]interface{}{"entity": entity, "operation": operation},
	}
}

// ArchiveDependency reports active referents blocking an archive.
func ArchiveDependency(entity, id string, blockers []string) *Error {
	return &Error{
		Kind:       KindArchiveDependency,
		Status:     http.StatusConflict,
		Message:    fmt.Sprintf("cannot archive this %s while it still has active %s", entity, strings.Join(blockers, ", ")),
		LogMessage: fmt.Sprintf("archive of %s %s blocked by: %s", entity, id, strings.Join(blockers, ", ")),
		Details:    map[string]interface{}{"entity": entity, "id": id, "blockers": blockers},
	}
}

// InUse reports referents preventing a safe delete.
func InUse(entity string, dependents []string) *Error {
	return &Error{
		Kind:       KindEntityInUse,
		Status:     http.StatusConflict,
		Message:    fmt.Sprintf("this %s is still referenced by %s", entity, strings.Join(dependents, ", ")),
		LogMessage: fmt.Sprintf("safe delete of %s refused, dependents: %s", entity, strings.Join(dependents, ", ")),
		Details:    map[string]interface{}{"entity": entity, "dependents": dependents},
	}
}

// CascadeDeletion reports a violated cascade invariant.
func CascadeDeletion(reason string) *Error {
	return &Error{
		Kind:       KindCascadeDeletion,
		Status:     http.StatusConflict,
		Message:    "cascade deletion is not allowed in the current state",
		LogMessage: fmt.Sprintf("cascade deletion refused: %s", reason),
		Details:    map[string]interface{}{"reason": reason},
	}
}

// NullFKMisconfigured reports a referencing FK that is not declared SET NULL.
func NullFKMisconfigured(constraint, entity string) *Error {
	return &Error{
		Kind:       KindNullFKMisconfigured,
		Status:     http.StatusInternalServerError,
		Message:    "this record cannot be deleted due to a configuration problem",
		LogMessage: fmt.Sprintf("fk %s referencing %s is not declared SET NULL", constraint, entity),
		Details:    map[string]interface{}{"constraint": constraint, "entity": entity},
	}
}

// UnimplementedGatherer reports a missing export gatherer for an entity kind.
func UnimplementedGatherer(entity string) *Error {
	return &Error{
		Kind:       KindUnimplementedGatherer,
		Status:     http.StatusInternalServerError,
		Message:    "export is not available for this record type",
		LogMessage: fmt.Sprintf("no export gatherer registered for %s", entity),
		Details:    map[string]interface{}{"entity": entity},
	}
}

// Validation reports a rejected input field. The offending entry is echoed
// back so clients can highlight the value.
func Validation(kind Kind, field, entry, message string) *Error {
	return &Error{
		Kind:       kind,
		Status:     http.StatusUnprocessableEntity,
		Message:    message,
		LogMessage: fmt.Sprintf("validation %s on field %s: entry %q", kind, field, entry),
		Details:    map[string]interface{}{"field": field, "entry": entry},
	}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New(KindInvalidCredentials, http.StatusUnauthorized, "invalid credentials")
	ErrWrongPassword      = New(KindWrongPassword, http.StatusUnauthorized, "current password does not match")
	ErrTokenInvalid       = New(KindTokenInvalid, http.StatusUnauthorized, "token is invalid")
	ErrTokenExpired       = New(KindTokenExpired, http.StatusUnauthorized, "token has expired")
	ErrTokenRevoked       = New(KindTokenRevoked, http.StatusUnauthorized, "token has been revoked")
	ErrResetLinkExpired   = New(KindResetLinkExpired, http.StatusUnauthorized, "password reset link has expired")
	ErrAccessRequired     = New(KindAccessTokenRequired, http.StatusForbidden, "an access token is required")
	ErrRefreshRequired    = New(KindRefreshTokenRequired, http.StatusForbidden, "a refresh token is required")
	ErrUserNotFound       = New(KindUserNotFound, http.StatusUnauthorized, "user account not found")
	ErrForbidden          = New(KindForbidden, http.StatusForbidden, "forbidden")
	ErrUnavailable        = New(KindUnavailable, http.StatusServiceUnavailable, "service temporarily unavailable")
	ErrInternal           = New(KindInternal, http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, KindInternal, http.StatusInternalServerError, ErrInternal.Message, "unexpected error")
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
