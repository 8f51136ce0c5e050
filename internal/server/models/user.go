// Серверная модель пользователя
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role - роль пользователя, определяет доступные операции.
type Role string

const (
	RoleTechnician Role = "technician"
	RoleDentist    Role = "dentist"
)

// Valid сообщает, входит ли роль в допустимый набор.
func (r Role) Valid() bool {
	return r == RoleTechnician || r == RoleDentist
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Principal - проверенная личность вызывающего, извлечённая из bearer-токена.
type Principal struct {
	UserID    uuid.UUID
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
