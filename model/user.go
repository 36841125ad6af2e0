package model

// DefaultRole is assigned to every user created through registration.
// The role is stored but not yet used for access control.
const DefaultRole = "staff"

// User model
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	// PasswordHash holds a base64-wrapped bcrypt hash, never the plaintext.
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}
