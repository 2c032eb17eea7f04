package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an email/password account. Its id doubles as the member id of
// the profile the account owns.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a random id when none is set.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
