// Package models содержит DTO HTTP API, общие для сервера и CLI-клиента.
//
// Сервер формирует эти структуры в api-слое, клиент декодирует их в internal/agent/api.
package models

import "time"

// UserView - безопасное представление пользователя (без пароля и хэша).
type UserView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// RegisterRequest - тело POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterResponse - ответ 201 на регистрацию.
type RegisterResponse struct {
	Message string   `json:"message"`
	User    UserView `json:"user"`
}

// LoginRequest - тело POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse - ответ 200 на логин: токен и данные пользователя.
type LoginResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    UserView `json:"user"`
}

// TokenClaims - расшифрованные claims bearer-токена, как их видит клиент.
type TokenClaims struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// ProfileResponse - ответ GET /api/auth/profile.
type ProfileResponse struct {
	User TokenClaims `json:"user"`
}

// Scan - запись о загруженном снимке.
//
// UploadedBy и UploadedByEmail могут быть null, если загрузивший неизвестен.
type Scan struct {
	ID              string    `json:"id"`
	PatientName     string    `json:"patient_name"`
	PatientID       string    `json:"patient_id"`
	ScanType        string    `json:"scan_type"`
	Region          string    `json:"region"`
	ImageURL        string    `json:"image_url"`
	UploadDate      time.Time `json:"upload_date"`
	UploadedBy      *string   `json:"uploaded_by"`
	UploadedByEmail *string   `json:"uploaded_by_email,omitempty"`
}

// ScanResponse - ответ с одним снимком (upload, get).
type ScanResponse struct {
	Message string `json:"message,omitempty"`
	Scan    Scan   `json:"scan"`
}

// ScansResponse - ответ со списком снимков.
type ScansResponse struct {
	Scans []Scan `json:"scans"`
}

// MessageResponse - простой ответ с сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse стандартный формат ошибки API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse - ответ health-check.
type StatusResponse struct {
	Status string `json:"status"`
}
