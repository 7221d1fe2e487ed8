package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookreview/internal/apperror"
	"bookreview/internal/platform/crypto"
	"bookreview/internal/user"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-key"

func newTestService(t *testing.T) (*Service, *user.MockRepository) {
	ctrl := gomock.NewController(t)
	repo := user.NewMockRepository(ctrl)
	return NewService(secret, time.Hour, user.NewService(repo)), repo
}

func storedUser(t *testing.T) user.User {
	hash, err := crypto.HashPassword("Str0ng!pass")
	require.NoError(t, err)
	return user.User{ID: "u-1", Name: "Ada", Email: "ada@example.com", PasswordHash: hash}
}

func TestService_Login(t *testing.T) {
	t.Run("issues token", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(storedUser(t), nil)

		tok, err := svc.Login(context.Background(), LoginInput{Email: "Ada@Example.com", Password: "Str0ng!pass"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", tok.TokenType)
		assert.Equal(t, 3600, tok.ExpiresIn)

		claims, err := crypto.ParseToken(secret, tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.Sub)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(storedUser(t), nil)

		_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "nope"})
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.EXPECT().GetByEmail(gomock.Any(), "ghost@example.com").Return(user.User{}, user.ErrNotFound)

		_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "Str0ng!pass"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.NotErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("missing password", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com"})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestHTTPHandler_Login(t *testing.T) {
	svc, repo := newTestService(t)
	handler := NewHTTPHandler(svc)

	t.Run("success", func(t *testing.T) {
		repo.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(storedUser(t), nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/users/login",
			strings.NewReader(`{"email":"ada@example.com","password":"Str0ng!pass"}`))

		handler.Login(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data Token `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.NotEmpty(t, resp.Data.AccessToken)
		assert.Equal(t, "Ada", resp.Data.User.Name)
	})

	t.Run("bad credentials", func(t *testing.T) {
		repo.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(storedUser(t), nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/v1/users/login",
			strings.NewReader(`{"email":"ada@example.com","password":"wrong"}`))

		handler.Login(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
