package session

import (
	"context"
	"garmentflow/domain"
	"time"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Context context.Context `json:"-"`

	Token       string    `json:"token"`
	Identity    Identity  `json:"identity"`
	SigningTime time.Time `json:"signingTime"`
}

type Identity struct {
	ID       types.ID    `json:"id"`
	Name     string      `json:"name"`
	Nickname string      `json:"nickname"`
	Area     domain.Area `json:"area"`
}

// DisplayName prefers the nickname.
func (i Identity) DisplayName() string {
	if i.Nickname != "" {
		return i.Nickname
	}
	return i.Name
}

func (s *Session) Clone() Session {
	return Session{Context: s.Context, Token: s.Token, Identity: s.Identity, SigningTime: s.SigningTime}
}

// InArea reports whether the session user belongs to one of the given areas.
func (s *Session) InArea(areas ...domain.Area) bool {
	if s == nil {
		return false
	}
	return s.Identity.Area.In(areas...)
}
