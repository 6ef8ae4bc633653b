// Package apperrors содержит типизированные ошибки ядра.
// Каждый слой проверяет их через errors.As, поэтому оборачивать их через %w безопасно.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError - некорректный или неполный ввод
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// ForbiddenError - политика авторизации запретила операцию
type ForbiddenError struct {
	Operation string
	ActorID   string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("actor %q is not allowed to %s", e.ActorID, e.Operation)
}

// NotFoundError - записи с таким идентификатором нет
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Resource, e.ID)
}

// ConflictError - недопустимый переход статуса
type ConflictError struct {
	Current   string
	Attempted string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("illegal status transition from %q to %q", e.Current, e.Attempted)
}

// DependencyError - внешняя зависимость (хранилище файлов, гео-индекс) недоступна
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %s unavailable: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(operation, actorID string) error {
	return &ForbiddenError{Operation: operation, ActorID: actorID}
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func Conflict(current, attempted string) error {
	return &ConflictError{Current: current, Attempted: attempted}
}

func Dependency(name string, err error) error {
	return &DependencyError{Dependency: name, Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsDependency(err error) bool {
	var target *DependencyError
	return errors.As(err, &target)
}
