package handlers

import (
	"ProductKeeper/internal/auth"
	"ProductKeeper/internal/config"
	"ProductKeeper/internal/middleware"
	"ProductKeeper/internal/model"
	"ProductKeeper/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler обрабатывает регистрацию и вход.
type UserHandler struct {
	UserService *service.UserService
	Tokens      *auth.TokenManager
	Logger      *zap.SugaredLogger
	Config      *config.Config
	resp        *responder
}

func NewUserHandler(userService *service.UserService, tokens *auth.TokenManager, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{
		UserService: userService,
		Tokens:      tokens,
		Logger:      logger,
		Config:      cfg,
		resp:        &responder{logger: logger},
	}
}

type registerRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=128"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	Role        string `json:"role" validate:"omitempty,max=16"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register создаёт пользователя и сразу выдаёт токен
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		h.resp.writeError(w, r, err)
		return
	}

	caller, _ := middleware.AssertionFromContext(r.Context())
	user, err := h.UserService.Register(r.Context(), service.RegisterInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		Caller:      caller,
	})
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	h.Logger.Infow("user registered", "user_id", user.ID, "role", user.Role)
	h.issue(w, r, http.StatusCreated, user)
}

// Login проверяет email/пароль и выдаёт токен
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		h.resp.writeError(w, r, err)
		return
	}

	user, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	h.issue(w, r, http.StatusOK, user)
}

// Me возвращает текущего пользователя
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	a, _ := middleware.AssertionFromContext(r.Context())
	user, err := h.UserService.GetByID(r.Context(), a.PrincipalID)
	if err != nil {
		h.resp.writeError(w, r, err)
		return
	}
	h.resp.writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) issue(w http.ResponseWriter, r *http.Request, status int, user *model.User) {
	token, err := h.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		h.Logger.Errorw("failed to issue token", "user_id", user.ID, "error", err)
		h.resp.writeError(w, r, err)
		return
	}
	middleware.SetLoginCookie(w, token, h.Config.EnableHTTPS)
	h.resp.writeJSON(w, status, authResponse{Token: token, User: user})
}
