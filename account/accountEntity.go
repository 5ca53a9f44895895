package account

import (
	"garmentflow/domain"

	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID     types.ID    `json:"id" gorm:"primary_key"`
	Name   string      `json:"name" gorm:"unique_index;size:64"`
	Secret string      `json:"secret"`
	Area   domain.Area `json:"area" gorm:"size:32;index"`

	Nickname string `json:"nickname"`
}

func (u *User) TableName() string {
	return "users"
}

type UserInfo struct {
	ID       types.ID    `json:"id"`
	Name     string      `json:"name"`
	Nickname string      `json:"nickname"`
	Area     domain.Area `json:"area"`
}

type BasicAuthUpdating struct {
	OriginalSecret string `json:"originalSecret"`
	NewSecret      string `json:"newSecret" binding:"required,gte=6,lte=32"`
}

type UserCreation struct {
	Name     string      `json:"name" binding:"required,lte=32"`
	Secret   string      `json:"secret" binding:"required,gte=6,lte=32"`
	Nickname string      `json:"nickname" binding:"omitempty,gte=1,lte=32"`
	Area     domain.Area `json:"area" binding:"required"`
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	} else {
		return u.Name
	}
}

func (u UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	} else {
		return u.Name
	}
}
