package auth

import "time"

type User struct {
	ID        string    `json:"_id,omitempty" yaml:"id,omitempty"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	CreatedAt time.Time `json:"createdAt,omitzero" yaml:"created_at,omitempty"`
}

// Credentials is the body of register and login. Name is ignored by login.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
