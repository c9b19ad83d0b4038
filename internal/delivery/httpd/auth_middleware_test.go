package httpd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/marisa-playground/labeling-service/internal/auth"
	"github.com/marisa-playground/labeling-service/internal/models"
)

// stubAuthService выдаёт фиксированного пользователя на фиксированный токен.
type stubAuthService struct {
	user *models.User
}

func (s *stubAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	if tokenString == "valid-token" && s.user != nil {
		return s.user, nil
	}
	return nil, errors.New("invalid token")
}

func (s *stubAuthService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	return nil, errors.New("not implemented")
}

func newTestHandler(user *models.User) *Handler {
	return &Handler{
		authService: &stubAuthService{user: user},
		logger:      zerolog.Nop(),
	}
}

func protectedEndpoint(h *Handler, op auth.Operation) http.Handler {
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return h.Authenticate(h.Require(op)(final))
}

func TestAuthenticate(t *testing.T) {
	worker := &models.User{ID: "u-1", Role: "worker", Status: models.UserStatusActive}

	t.Run("missing header", func(t *testing.T) {
		handler := protectedEndpoint(newTestHandler(worker), auth.OpTaskNext)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		handler := protectedEndpoint(newTestHandler(worker), auth.OpTaskNext)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "valid-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		handler := protectedEndpoint(newTestHandler(worker), auth.OpTaskNext)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer expired-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("worker allowed on worker operation", func(t *testing.T) {
		handler := protectedEndpoint(newTestHandler(worker), auth.OpTaskNext)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("worker forbidden on admin operation", func(t *testing.T) {
		handler := protectedEndpoint(newTestHandler(worker), auth.OpTaskConsolidate)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
