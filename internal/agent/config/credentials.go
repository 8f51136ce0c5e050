// Package config содержит функции для работы с локальной конфигурацией CLI-клиента.
//
// Конфигурация хранит bearer-токен и данные вошедшего пользователя
// в домашней директории пользователя в файле:
//
//	~/.oralvis/credentials.json
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Credentials содержит учётные данные, сохранённые после login.
type Credentials struct {
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// LoggedIn сообщает, есть ли сохранённый токен.
func (c *Credentials) LoggedIn() bool {
	return c != nil && c.Token != ""
}

// DefaultPath возвращает путь <home>/.oralvis/credentials.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".oralvis", "credentials.json"), nil
}

// Load загружает конфигурацию из указанного файла.
//
// Если файл не существует, возвращает пустую конфигурацию без ошибки.
func Load(path string) (*Credentials, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Credentials{}, nil
		}
		return nil, err
	}
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save сохраняет конфигурацию в JSON.
//
// Директория создаётся с правами 0700, файл пишется с правами 0600.
func Save(path string, c *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// Clear удаляет файл с учётными данными. Отсутствие файла не ошибка.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
