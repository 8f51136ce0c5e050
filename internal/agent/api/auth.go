// В этом файле описаны методы клиента для работы
// с эндпоинтами аутентификации: регистрация, вход и профиль по токену.
package api

import "github.com/IvanChernomyrdin/go-oralvis/internal/shared/models"

// Register регистрирует пользователя с ролью technician или dentist.
//
// POST /api/auth/register
func (c *Client) Register(email, password, role string) (models.RegisterResponse, error) {
	var resp models.RegisterResponse
	err := c.PostJSON("/api/auth/register", models.RegisterRequest{
		Email:    email,
		Password: password,
		Role:     role,
	}, &resp, "")
	return resp, err
}

// Login выполняет вход и возвращает bearer-токен вместе с данными пользователя.
//
// POST /api/auth/login
func (c *Client) Login(email, password string) (models.LoginResponse, error) {
	var resp models.LoginResponse
	err := c.PostJSON("/api/auth/login", models.LoginRequest{Email: email, Password: password}, &resp, "")
	return resp, err
}

// Profile возвращает claims текущего токена.
//
// GET /api/auth/profile
func (c *Client) Profile(token string) (models.TokenClaims, error) {
	var resp models.ProfileResponse
	err := c.GetJSON("/api/auth/profile", &resp, token)
	return resp.User, err
}
