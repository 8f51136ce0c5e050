// HTTP-хендлеры регистрации, логина и профиля
package api

import (
	"encoding/json"
	"net/http"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/middleware"
	smodels "github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-oralvis/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/models"
)

// Register обрабатывает регистрацию пользователя.
//
// Ответы:
//   - 201 Created: регистрация успешна;
//   - 400 Bad Request: неверный JSON, невалидные данные или email уже занят;
//   - 500 Internal Server Error: прочие ошибки.
//
// @Summary      Register user
// @Description  Creates a technician or dentist account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body models.RegisterRequest true "Register request"
// @Success      201 {object} models.RegisterResponse
// @Failure      400 {object} models.ErrorResponse "Invalid input, bad JSON or user already exists"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, serr.ErrBadJSON)
		return
	}

	user, err := h.Svc.Auth.Register(r.Context(), req.Email, req.Password, smodels.Role(req.Role))
	if err != nil {
		h.writeServiceError(w, "register", err)
		return
	}

	writeJSON(w, http.StatusCreated, models.RegisterResponse{
		Message: "User registered successfully",
		User:    userView(user),
	})
}

// Login обрабатывает вход пользователя и выдачу access токена.
//
// Ответы:
//   - 200 OK: успешный вход;
//   - 400 Bad Request: неверный JSON, пустые поля или неверные учётные данные;
//   - 500 Internal Server Error: прочие ошибки.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body models.LoginRequest true "Login request"
// @Success      200 {object} models.LoginResponse
// @Failure      400 {object} models.ErrorResponse "Invalid input or invalid credentials"
// @Failure      500 {object} models.ErrorResponse "Internal server error"
// @Router       /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, serr.ErrBadJSON)
		return
	}

	res, err := h.Svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Message: "Login successful",
		Token:   res.Token,
		User:    userView(res.User),
	})
}

// Profile возвращает расшифрованные claims текущего токена.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} models.ProfileResponse
// @Failure      400 {object} models.ErrorResponse "Invalid token"
// @Failure      401 {object} models.ErrorResponse "No token provided"
// @Router       /api/auth/profile [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, serr.ErrUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, models.ProfileResponse{User: tokenClaims(p)})
}
