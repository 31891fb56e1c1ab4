package models

import "time"

type Student struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ClassroomID uint   `gorm:"index;not null" json:"classroom_id"`
	DisplayName string `gorm:"size:60;not null" json:"display_name"` // not unique

	// TokenHash is the hex SHA-256 of the student's bearer token.
	TokenHash string `gorm:"size:64;uniqueIndex;not null" json:"-"`

	// RequestsUsed only ever grows, except for an explicit teacher reset.
	RequestsUsed int  `gorm:"not null;default:0" json:"requests_used"`
	Active       bool `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
