package model

import "strings"

// Role — роль принципала. Набор значений закрыт.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// ParseRole разбирает строку в Role без учёта регистра.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Valid сообщает, является ли роль одной из известных.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	default:
		return false
	}
}

// AllRoles возвращает все известные роли.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleEditor, RoleViewer}
}
