package app_error

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
)

type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindInvalidDocument    Kind = "INVALID_DOCUMENT"
	KindTeamMismatch       Kind = "TEAM_MISMATCH"
	KindCapacityExceeded   Kind = "CAPACITY_EXCEEDED"
	KindLifecycleViolation Kind = "LIFECYCLE_VIOLATION"
	KindUnremovableEntity  Kind = "UNREMOVABLE_ENTITY"
	KindInactiveEntity     Kind = "INACTIVE_ENTITY"
	KindConflict           Kind = "CONFLICT"
)

type Error struct {
	Kind    Kind
	Entity  string
	Message string
}

func (e *Error) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s: %s", e.Entity, e.Message)
	}
	return e.Message
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return 404
	case KindConflict:
		return 409
	default:
		return 422
	}
}

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Message: "not found"}
}

func InvalidDocument(message string) *Error {
	return &Error{Kind: KindInvalidDocument, Entity: "participant", Message: message}
}

func TeamMismatch(message string) *Error {
	return &Error{Kind: KindTeamMismatch, Entity: "team", Message: message}
}

func CapacityExceeded(message string) *Error {
	return &Error{Kind: KindCapacityExceeded, Entity: "event", Message: message}
}

func LifecycleViolation(entity string, message string) *Error {
	return &Error{Kind: KindLifecycleViolation, Entity: entity, Message: message}
}

func Unremovable(entity string, message string) *Error {
	return &Error{Kind: KindUnremovableEntity, Entity: entity, Message: message}
}

func Inactive(entity string) *Error {
	return &Error{Kind: KindInactiveEntity, Entity: entity, Message: "is not active"}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Respond writes err as a json response, mapping known error kinds to their
// http status and everything else to 500.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), gin.H{"error": appErr.Error(), "kind": appErr.Kind})
		return
	}
	c.JSON(500, gin.H{"error": err.Error()})
}
