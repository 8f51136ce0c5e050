// Package errors содержит общие доменные ошибки приложения
// и утилиты для error wrapping.
//
// Эти ошибки используются в service и repository слоях
// и маппятся на HTTP-статусы в api слое.
package errors

import "errors"

var (
	// Входные данные невалидны (пустые поля, неправильная роль и т.п.)
	ErrInvalidInput = errors.New("invalid input")
	// Неверные учётные данные (одинаково для неизвестного email и неверного пароля)
	ErrInvalidCredentials = errors.New("invalid credentials")
	// Получена непредвиденная ошибка
	ErrInternal = errors.New("internal error")
	// Полученные JSON данные с ошибками
	ErrBadJSON = errors.New("bad json")
	// Токен не передан
	ErrUnauthorized = errors.New("no token provided")
	// Токен передан, но подпись/срок/claims невалидны
	ErrInvalidToken = errors.New("invalid token")
	// Роль пользователя не подходит для операции
	ErrForbidden = errors.New("forbidden")
	// Ресурс уже существует (например email уже занят)
	ErrAlreadyExists = errors.New("already exists")
	// Ресурс не найден
	ErrNotFound = errors.New("not found")
	// ожидаемая ошибка
	ErrExpectedError = errors.New("expected error")
)

// только для загрузки снимков
var (
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrUnsupportedMedia = errors.New("only image files are allowed")
)
