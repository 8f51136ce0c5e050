// Package api содержит HTTP-клиент для взаимодействия с сервером OralVis.
//
// Клиент инкапсулирует базовый URL сервера и настроенный http.Client,
// предоставляя методы для JSON-запросов, multipart-загрузки снимков
// и скачивания PDF-отчётов с авторизацией через Bearer токен.
//
// Особенности:
//   - baseURL нормализуется (обрезаются завершающие "/").
//   - По умолчанию добавляется заголовок Accept: application/json.
//   - Пустое тело ответа (EOF при декодировании) не считается ошибкой.
//   - При ответах не 2xx возвращается *APIError: статус и текст поля "error"
//     из тела (если тело не JSON, то текст тела или res.Status).
package api

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/models"
)

// DefaultTimeout - таймаут http.Client по умолчанию.
const DefaultTimeout = 30 * time.Second

// Client реализует HTTP-клиент для общения с сервером OralVis.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет http.Client (например, клиент httptest-сервера).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithInsecureTLS отключает проверку сертификата сервера.
//
// ВНИМАНИЕ: только для локальной разработки с самоподписанным сертификатом.
func WithInsecureTLS() Option {
	return func(c *Client) {
		c.http.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // только для dev
		}
	}
}

// NewClient создаёт новый HTTP-клиент для общения с сервером.
//
// baseURL - базовый адрес сервера, например "http://127.0.0.1:5000".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError - ответ сервера с кодом не 2xx.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// StatusOf возвращает HTTP-статус из *APIError, иначе 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// readAPIErrorBody читает тело ошибочного ответа и собирает *APIError.
func readAPIErrorBody(res *http.Response) error {
	raw, _ := io.ReadAll(res.Body)

	var body models.ErrorResponse
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Error
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = res.Status
	}
	return &APIError{Status: res.StatusCode, Message: msg}
}

// decodeJSONOrOK декодирует JSON из r в resp. Пустое тело не ошибка.
func decodeJSONOrOK(r io.Reader, resp any) error {
	if resp == nil {
		return nil
	}
	err := json.NewDecoder(r).Decode(resp)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (c *Client) newRequest(method, path string, body io.Reader, authToken string) (*http.Request, error) {
	r, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	r.Header.Set("Accept", "application/json")
	if authToken != "" {
		r.Header.Set("Authorization", "Bearer "+authToken)
	}
	return r, nil
}

// do выполняет запрос, проверяет статус и декодирует JSON-ответ в resp.
func (c *Client) do(r *http.Request, resp any) error {
	res, err := c.http.Do(r)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return readAPIErrorBody(res)
	}
	if res.StatusCode == http.StatusNoContent {
		return nil
	}
	return decodeJSONOrOK(res.Body, resp)
}

// PostJSON выполняет POST-запрос, сериализуя req в JSON.
//
// Если req == nil, тело не отправляется и Content-Type не устанавливается.
// Если resp == nil, тело ответа не декодируется.
func (c *Client) PostJSON(path string, req any, resp any, authToken string) error {
	var buf bytes.Buffer
	if req != nil {
		if err := json.NewEncoder(&buf).Encode(req); err != nil {
			return err
		}
	}

	r, err := c.newRequest(http.MethodPost, path, &buf, authToken)
	if err != nil {
		return err
	}
	if req != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return c.do(r, resp)
}

// GetJSON выполняет GET-запрос и (опционально) декодирует JSON-ответ.
func (c *Client) GetJSON(path string, resp any, authToken string) error {
	r, err := c.newRequest(http.MethodGet, path, nil, authToken)
	if err != nil {
		return err
	}
	return c.do(r, resp)
}
