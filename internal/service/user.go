package service

import (
	"ProductKeeper/internal/access"
	"ProductKeeper/internal/apperr"
	"ProductKeeper/internal/auth"
	"ProductKeeper/internal/model"
	"ProductKeeper/internal/repo"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = apperr.Conflict(apperr.CodeEmailTaken, "email already in use")
	ErrInvalidCredentials = apperr.Authentication(apperr.CodeInvalidCredentials, "invalid credentials")
	ErrUserNotFound       = apperr.NotFound(apperr.CodeNotFound, "user not found")
)

// UserService регистрирует пользователей и проверяет пароли.
type UserService struct {
	repo repo.UserRepository
	cost int
}

func NewUserService(r repo.UserRepository) *UserService {
	return &UserService{repo: r, cost: bcrypt.DefaultCost}
}

// RegisterInput данные регистрации. Пустая роль означает EDITOR.
// Любую другую роль может назначить только ADMIN, его утверждение лежит в Caller.
type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
	Role        string
	Caller      *auth.Assertion
}

// Register создаёт учётную запись с уникальным email.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	role := model.RoleEditor
	if strings.TrimSpace(in.Role) != "" {
		r, ok := model.ParseRole(in.Role)
		if !ok {
			return nil, apperr.Validation(apperr.CodeInvalidEnum, "role must be one of ADMIN, EDITOR, VIEWER")
		}
		role = r
	}
	if role != model.RoleEditor {
		if err := access.AuthorizeOperation(in.Caller, access.OpAssignRole); err != nil {
			return nil, err
		}
	}
	email := normalizeEmail(in.Email)

	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidField, "password cannot be hashed")
	}
	u := &model.User{
		ID:           uuid.NewString(),
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	created, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		// гонка двух регистраций: уникальный индекс срабатывает у второй
		if taken, checkErr := s.emailTaken(ctx, email); checkErr == nil && taken {
			return nil, ErrEmailTaken
		}
		return nil, apperr.Collaborator("create user", err)
	}
	return created, nil
}

// Login проверяет пару email/пароль. Неизвестный email и неверный пароль неразличимы.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, notFoundOr(err, ErrInvalidCredentials, "get user by email")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByID возвращает учётную запись по идентификатору.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if !validID(id) {
		return nil, ErrUserNotFound
	}
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "get user by id")
	}
	return u, nil
}

func (s *UserService) emailTaken(ctx context.Context, email string) (bool, error) {
	existing, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	case err != nil:
		return false, apperr.Collaborator("get user by email", err)
	}
	return existing != nil, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
