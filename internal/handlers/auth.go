package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/maynagashev/pagekeeper/internal/models"
	"github.com/maynagashev/pagekeeper/internal/services"
)

// AuthHandler обрабатывает регистрацию и вход пользователей дашборда.
type AuthHandler struct {
	service services.AuthService
}

// NewAuthHandler создает новый экземпляр AuthHandler.
func NewAuthHandler(s services.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

func readCredentials(w http.ResponseWriter, r *http.Request, component string) (models.LoginRequest, bool) {
	var req models.LoginRequest
	if !decode(w, r, &req, component) {
		return req, false
	}
	if req.Username == "" || req.Password == "" {
		log.Printf("[%s] Пустое имя пользователя или пароль", component)
		writeFailure(w, http.StatusBadRequest, "Имя пользователя и пароль не могут быть пустыми", "")
		return req, false
	}
	return req, true
}

// Register обрабатывает POST /api/register и возвращает ID нового пользователя.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := readCredentials(w, r, "AuthHandler:Register")
	if !ok {
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		writeFailure(w, http.StatusConflict, err.Error(), "")
		return
	case err != nil:
		log.Printf("[AuthHandler:Register] Ошибка регистрации '%s': %v", req.Username, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.RegisterResponse{
		Success: true,
		Message: "Пользователь успешно зарегистрирован",
		UserID:  user.ID,
	})
}

// Login обрабатывает POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readCredentials(w, r, "AuthHandler:Login")
	if !ok {
		return
	}

	resp, err := h.service.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		writeFailure(w, http.StatusUnauthorized, err.Error(), "")
		return
	case err != nil:
		log.Printf("[AuthHandler:Login] Ошибка входа '%s': %v", req.Username, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
