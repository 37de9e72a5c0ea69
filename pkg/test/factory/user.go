package factory

import (
	fab "github.com/Goldziher/fabricator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const DefaultPassword = "12345678"

// NewUser builds a T with a unique username and email, and the bcrypt hash
// of DefaultPassword unless EncryptedPassword is given.
func NewUser[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	suffix := uuid.NewString()[:8]
	data := map[string]any{
		"Username": "user_" + suffix,
		"Email":    "user_" + suffix + "@example.com",
		"Name":     "Test",
		"LastName": "User",
	}

	for _, custom := range customData {
		for key, value := range custom {
			data[key] = value
		}
	}

	if _, exists := data["EncryptedPassword"]; !exists {
		encryptedPassword, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
		data["EncryptedPassword"] = string(encryptedPassword)
	}

	return instance.Build(data)
}
