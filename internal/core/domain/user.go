package domain

import (
	"strings"
	"time"
)

type User struct {
	ID                int       `db:"id"`
	Username          string    `db:"username"`
	Email             string    `db:"email"`
	EncryptedPassword string    `db:"encrypted_password"`
	Name              string    `db:"name"`
	LastName          string    `db:"last_name"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.LastName)
}

func (u *User) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"username":           u.Username,
		"email":              u.Email,
		"encrypted_password": u.EncryptedPassword,
		"name":               u.Name,
		"last_name":          u.LastName,
		"updated_at":         u.UpdatedAt,
	}
}
