package model

import "time"

// User учётная запись принципала с ролью.
type User struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	DisplayName  string    `gorm:"not null" json:"displayName"`
	Email        string    `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
