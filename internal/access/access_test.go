package access

import (
	"testing"

	"ProductKeeper/internal/apperr"
	"ProductKeeper/internal/auth"
	"ProductKeeper/internal/model"

	"github.com/stretchr/testify/assert"
)

func assertion(role model.Role) *auth.Assertion {
	return &auth.Assertion{PrincipalID: "p1", Role: role}
}

func TestAuthorize_PolicyTable(t *testing.T) {
	A, E, V := model.RoleAdmin, model.RoleEditor, model.RoleViewer
	table := map[Operation][]model.Role{
		OpCreateProduct: {A, E},
		OpReadProduct:   {A, E, V},
		OpUpdateProduct: {A, E},
		OpDeleteProduct: {A},
		OpUploadImage:   {A, E},
		OpReadImage:     {A, E, V},
		OpDeleteImage:   {A, E},
		OpAssignRole:    {A},
	}
	for op, allowed := range table {
		for _, role := range model.AllRoles() {
			want := false
			for _, r := range allowed {
				if r == role {
					want = true
				}
			}
			err := AuthorizeOperation(assertion(role), op)
			if want {
				assert.NoError(t, err, "%s as %s", op, role)
			} else {
				assert.ErrorIs(t, err, ErrInsufficientRole, "%s as %s", op, role)
			}
		}
	}
}

func TestAuthorize_OnlyAdminDeletesProducts(t *testing.T) {
	for _, role := range []model.Role{model.RoleEditor, model.RoleViewer, model.Role("ROOT"), ""} {
		err := AuthorizeOperation(assertion(role), OpDeleteProduct)
		assert.ErrorIs(t, err, ErrInsufficientRole, string(role))
		assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
	}
}

func TestAuthorize_AuthenticationCheckedFirst(t *testing.T) {
	err := Authorize(nil, Roles(model.RoleAdmin))
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))

	// пустой принципал с подходящей ролью всё равно не аутентифицирован
	err = Authorize(&auth.Assertion{Role: model.RoleAdmin}, Roles(model.RoleAdmin))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAuthorize_UnknownOperationDeniesEveryone(t *testing.T) {
	for _, role := range model.AllRoles() {
		assert.ErrorIs(t, AuthorizeOperation(assertion(role), Operation("nope")), ErrInsufficientRole)
	}
}

func TestRoleSet_Contains(t *testing.T) {
	s := Roles(model.RoleEditor, model.Role("ghost"))
	assert.True(t, s.Contains(model.RoleEditor))
	assert.False(t, s.Contains(model.RoleAdmin))
	assert.False(t, s.Contains(model.Role("ghost")))
}
