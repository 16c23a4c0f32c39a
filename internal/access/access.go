// Package access решает, может ли проверенный пользователь выполнить операцию.
package access

import (
	"ProductKeeper/internal/apperr"
	"ProductKeeper/internal/auth"
	"ProductKeeper/internal/model"
)

// Operation - имя защищённого действия.
type Operation string

const (
	OpCreateProduct      Operation = "product.create"
	OpReadProduct        Operation = "product.read"
	OpUpdateProduct      Operation = "product.update"
	OpDeleteProduct      Operation = "product.delete"
	OpUploadImage        Operation = "image.upload"
	OpReadImage          Operation = "image.read"
	OpDeleteImage        Operation = "image.delete"
	OpReadSelf           Operation = "principal.read"
	OpReadReconciliation Operation = "reconciliation.read"
	OpAssignRole         Operation = "principal.assign_role"
)

// RoleSet - набор ролей, допущенных к операции.
type RoleSet struct {
	admin, editor, viewer bool
}

// Roles собирает RoleSet.
func Roles(roles ...model.Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		switch r {
		case model.RoleAdmin:
			s.admin = true
		case model.RoleEditor:
			s.editor = true
		case model.RoleViewer:
			s.viewer = true
		}
	}
	return s
}

// Contains сообщает, входит ли r в набор. Неизвестная роль не входит никогда.
func (s RoleSet) Contains(r model.Role) bool {
	switch r {
	case model.RoleAdmin:
		return s.admin
	case model.RoleEditor:
		return s.editor
	case model.RoleViewer:
		return s.viewer
	default:
		return false
	}
}

var (
	anyRole    = Roles(model.RoleAdmin, model.RoleEditor, model.RoleViewer)
	writers    = Roles(model.RoleAdmin, model.RoleEditor)
	adminsOnly = Roles(model.RoleAdmin)
)

var policy = map[Operation]RoleSet{
	OpCreateProduct:      writers,
	OpReadProduct:        anyRole,
	OpUpdateProduct:      writers,
	OpDeleteProduct:      adminsOnly,
	OpUploadImage:        writers,
	OpReadImage:          anyRole,
	OpDeleteImage:        writers,
	OpReadSelf:           anyRole,
	OpReadReconciliation: adminsOnly,
	OpAssignRole:         adminsOnly,
}

// Required возвращает роли, допущенные к op. Неизвестная операция запрещена всем.
func Required(op Operation) RoleSet {
	return policy[op]
}

// Причины отказа.
var (
	ErrUnauthenticated  = apperr.Authentication(apperr.CodeUnauthenticated, "authentication required")
	ErrInsufficientRole = apperr.Authorization(apperr.CodeInsufficientRole, "role is not allowed to perform this operation")
)

// Authorize возвращает nil или ошибку отказа. Отсутствие утверждения проверяется
// раньше роли, поэтому анонимный вызов всегда получает ErrUnauthenticated.
func Authorize(a *auth.Assertion, required RoleSet) error {
	if a == nil || a.PrincipalID == "" {
		return ErrUnauthenticated
	}
	if !required.Contains(a.Role) {
		return ErrInsufficientRole
	}
	return nil
}

// AuthorizeOperation проверяет a по политике для op.
func AuthorizeOperation(a *auth.Assertion, op Operation) error {
	return Authorize(a, Required(op))
}
