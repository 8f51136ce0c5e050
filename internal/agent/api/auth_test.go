package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-oralvis/internal/agent/api"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/models"
)

func TestRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/register", r.URL.Path)

		var req models.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, models.RegisterRequest{Email: "t@x.com", Password: "pw1", Role: "technician"}, req)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.RegisterResponse{
			Message: "User registered successfully",
			User:    models.UserView{ID: "u1", Email: req.Email, Role: req.Role},
		})
	}))
	defer srv.Close()

	resp, err := api.NewClient(srv.URL).Register("t@x.com", "pw1", "technician")
	require.NoError(t, err)
	require.Equal(t, "u1", resp.User.ID)
	require.Equal(t, "technician", resp.User.Role)
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(models.LoginResponse{
			Message: "Login successful",
			Token:   "tok-A",
			User:    models.UserView{ID: "u1", Email: "t@x.com", Role: "technician"},
		})
	}))
	defer srv.Close()

	resp, err := api.NewClient(srv.URL).Login("t@x.com", "pw1")
	require.NoError(t, err)
	require.Equal(t, "tok-A", resp.Token)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse{Error: "invalid credentials"})
	}))
	defer srv.Close()

	_, err := api.NewClient(srv.URL).Login("t@x.com", "bad")
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, api.StatusOf(err))
	require.Contains(t, err.Error(), "invalid credentials")
}

func TestProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/profile", r.URL.Path)
		require.Equal(t, "Bearer tok-B", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(models.ProfileResponse{User: models.TokenClaims{
			UserID: "u2", Email: "d@x.com", Role: "dentist", IssuedAt: 1, ExpiresAt: 2,
		}})
	}))
	defer srv.Close()

	claims, err := api.NewClient(srv.URL).Profile("tok-B")
	require.NoError(t, err)
	require.Equal(t, "dentist", claims.Role)
	require.EqualValues(t, 2, claims.ExpiresAt)
}
