package sessions

import (
	"garmentflow/account"
	"garmentflow/bizerror"
	"garmentflow/session"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

var PathSessions = "/v1/sessions"

func RegisterSessionsHandler(r *gin.Engine) {
	g := r.Group(PathSessions)
	g.POST("", SimpleLoginHandler)
	g.DELETE("", SimpleLogoutHandler)
}

func SimpleLogoutHandler(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, false)
	c.AbortWithStatus(http.StatusNoContent)
}

func SimpleLoginHandler(c *gin.Context) {
	login := session.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	identity, err := account.AuthenticateFunc(c.Request.Context(), login.Name, login.Password)
	if err != nil {
		panic(err)
	}

	token := uuid.New().String()
	s := session.Session{Token: token, Identity: *identity, SigningTime: time.Now()}
	session.TokenCache.Set(token, &s, cache.DefaultExpiration)
	logrus.WithFields(logrus.Fields{"user": identity.Name, "area": identity.Area}).Info("user signed in")

	c.SetCookie(session.KeySecToken, token, int(session.TokenExpiration/time.Second), "/", "", false, false)
	c.JSON(http.StatusOK, &s)
}
