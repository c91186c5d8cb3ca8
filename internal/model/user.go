package model

import (
	"time"
)

// 用户角色
const (
	RoleEngineer = "engineer"
	RoleCompany  = "company"
	RoleAdmin    = "admin"
)

type User struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	Email         string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash  *string    `gorm:"size:255" json:"-"`
	Role          string     `gorm:"size:20;not null;index" json:"role"`
	Name          string     `gorm:"size:100" json:"name"`
	AvatarURL     string     `gorm:"size:500" json:"avatar_url"`
	GithubID      *string    `gorm:"column:github_id;size:50;uniqueIndex" json:"-"`
	EmailVerified bool       `gorm:"default:false" json:"email_verified"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsCompany() bool {
	return u.Role == RoleCompany
}

func (u *User) IsEngineer() bool {
	return u.Role == RoleEngineer
}
