package sessions_test

import (
	"context"
	"garmentflow/account"
	"garmentflow/bizerror"
	"garmentflow/domain"
	"garmentflow/session"
	"garmentflow/sessions"
	"garmentflow/testinfra"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestSessionsRestAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	sessions.RegisterSessionsHandler(router)

	t.Run("should validate login request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, sessions.PathSessions, strings.NewReader(`{"name":"ana"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(MatchJSON(`{"code":"common.bad_param",
			"message":"Key: 'LoginRequest.Password' Error:Field validation for 'Password' failed on the 'required' tag",
			"data":null}`))
	})

	t.Run("should reject invalid credentials", func(t *testing.T) {
		account.AuthenticateFunc = func(ctx context.Context, name, password string) (*session.Identity, error) {
			return nil, bizerror.ErrUnauthenticated
		}
		req := httptest.NewRequest(http.MethodPost, sessions.PathSessions, strings.NewReader(`{"name":"ana","password":"bad"}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	t.Run("should sign in and sign out", func(t *testing.T) {
		account.AuthenticateFunc = func(ctx context.Context, name, password string) (*session.Identity, error) {
			return &session.Identity{ID: 10, Name: name, Area: domain.AreaCorte}, nil
		}
		req := httptest.NewRequest(http.MethodPost, sessions.PathSessions, strings.NewReader(`{"name":"ana","password":"123456"}`))
		status, body, resp := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"identity":{"id":"10","name":"ana","nickname":"","area":"corte"}`))

		var token string
		for _, c := range resp.Cookies() {
			if c.Name == session.KeySecToken {
				token = c.Value
			}
		}
		Expect(token).ToNot(BeEmpty())
		cached, found := session.TokenCache.Get(token)
		Expect(found).To(BeTrue())
		Expect(cached.(*session.Session).Identity.Name).To(Equal("ana"))

		req = httptest.NewRequest(http.MethodDelete, sessions.PathSessions, nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: token})
		status, _, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))
		_, found = session.TokenCache.Get(token)
		Expect(found).To(BeFalse())
	})
}
