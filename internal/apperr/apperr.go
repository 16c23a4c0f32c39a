// Package apperr описывает ошибки, которые сервис возвращает клиентам.
//
// У каждой ошибки есть Kind (класс) и Code (стабильная причина, на которую
// может опираться клиент). Message предназначено для человека и может меняться.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind - класс ошибки.
type Kind int

const (
	KindCollaborator Kind = iota
	KindAuthentication
	KindAuthorization
	KindValidation
	KindPrecondition
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "collaborator"
	}
}

// Code - стабильный идентификатор причины.
type Code string

const (
	CodeInvalidToken            Code = "InvalidToken"
	CodeExpiredToken            Code = "ExpiredToken"
	CodeMalformedToken          Code = "MalformedToken"
	CodeUnauthenticated         Code = "Unauthenticated"
	CodeInvalidCredentials      Code = "InvalidCredentials"
	CodeInsufficientRole        Code = "InsufficientRole"
	CodeInvalidEnum             Code = "InvalidEnum"
	CodeInvalidField            Code = "InvalidField"
	CodeUnknownField            Code = "UnknownField"
	CodeImmutableField          Code = "ImmutableField"
	CodeUnsupportedType         Code = "UnsupportedType"
	CodeTooLarge                Code = "TooLarge"
	CodeMissingFile             Code = "MissingFile"
	CodePreconditionFailed      Code = "PreconditionFailed"
	CodeNotFound                Code = "NotFound"
	CodeProductNotFound         Code = "ProductNotFound"
	CodeEmailTaken              Code = "EmailTaken"
	CodeCollaboratorUnavailable Code = "CollaboratorUnavailable"
	CodeRateLimited             Code = "RateLimited"
)

// Error - структурированная ошибка сервисного слоя.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает Kind, Code и Message: разные ошибки с одним кодом не равны.
// Для проверки только кода служит CodeOf.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Code == e.Code && t.Message == e.Message
}

// Status возвращает HTTP-статус для ошибки.
func (e *Error) Status() int {
	if e.Code == CodeTooLarge {
		return http.StatusRequestEntityTooLarge
	}
	switch e.Kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindPrecondition:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// New создаёт *Error без причины.
func New(kind Kind, code Code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Authentication(code Code, msg string) *Error { return New(KindAuthentication, code, msg) }

func Authorization(code Code, msg string) *Error { return New(KindAuthorization, code, msg) }

func Validation(code Code, msg string) *Error { return New(KindValidation, code, msg) }

func Precondition(msg string) *Error { return New(KindPrecondition, CodePreconditionFailed, msg) }

func NotFound(code Code, msg string) *Error { return New(KindNotFound, code, msg) }

func Conflict(code Code, msg string) *Error { return New(KindConflict, code, msg) }

// Collaborator оборачивает сбой хранилища или сети. op попадает только в логи,
// клиенту он не показывается.
func Collaborator(op string, err error) *Error {
	return &Error{Kind: KindCollaborator, Code: CodeCollaboratorUnavailable, Message: op, Err: err}
}

// From достаёт *Error из err. Всё остальное считается сбоем хранилища.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Collaborator("unexpected", err)
}

// KindOf возвращает Kind ошибки.
func KindOf(err error) Kind {
	return From(err).Kind
}

// CodeOf возвращает Code ошибки, для nil пустую строку.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	return From(err).Code
}

// PublicMessage возвращает текст, который можно показать клиенту.
func (e *Error) PublicMessage() string {
	if e.Kind == KindCollaborator {
		return "internal error"
	}
	return e.Message
}
