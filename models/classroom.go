package models

import "time"

type Classroom struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`

	// JoinCode is stored in canonical uppercase; lookups uppercase the
	// presented code so entry is case-insensitive.
	JoinCode string `gorm:"size:12;uniqueIndex;not null" json:"join_code"`

	// TeacherTokenHash is the hex SHA-256 of the teacher's bearer token.
	// The raw token is returned once at creation and never stored.
	TeacherTokenHash string `gorm:"size:64;uniqueIndex;not null" json:"-"`

	RequestLimit int  `gorm:"not null;default:50" json:"request_limit"` // per-student quota
	MaxStudents  int  `gorm:"not null;default:40" json:"max_students"`
	Active       bool `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
