package models

import (
	"time"

	"github.com/mywealth/wealth-backend/pkg/enums"
)

// User is provisioned on first authenticated request; the uid comes from the identity provider.
type User struct {
	UID         string         `gorm:"column:uid;type:text;primaryKey"`
	Email       *string        `gorm:"column:email;type:text;index"`
	Role        enums.UserRole `gorm:"column:role;type:text;not null"`
	LastLoginAt *time.Time     `gorm:"column:last_login_at"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
