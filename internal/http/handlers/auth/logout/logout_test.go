package logout

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/wellness-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wellness-auth/internal/models"
)

type RevokerMock struct {
	mock.Mock
}

func (m *RevokerMock) Revoke(w http.ResponseWriter) {
	m.Called(w)
	http.SetCookie(w, &http.Cookie{Name: "wellness_session", MaxAge: -1})
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestLogoutHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name     string
		identity *models.Identity
	}{
		{name: "with session", identity: &models.Identity{UserID: "uid-1", Role: models.RoleStudent}},
		{name: "without session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revoker := new(RevokerMock)
			revoker.On("Revoke", mock.Anything).Twice()
			handler := New(newNoopLogger(), revoker)

			for range 2 {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/logout", nil)
				if tt.identity != nil {
					req = req.WithContext(middlewarectx.WithIdentity(req.Context(), tt.identity))
				}
				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, req)

				assert.Equal(t, http.StatusOK, rec.Code)
				assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
				cookies := rec.Result().Cookies()
				if assert.Len(t, cookies, 1) {
					assert.Equal(t, -1, cookies[0].MaxAge)
				}
			}
			revoker.AssertExpectations(t)
		})
	}
}
