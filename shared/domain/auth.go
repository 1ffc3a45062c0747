package domain

import "github.com/google/uuid"

type AccountId = uuid.UUID

// Credentials are what a publisher presents with a request.
type Credentials struct {
	Username string
	Password string
}

// StoredCredentials is a row of the users table. PasswordHash is a
// self-describing PHC (argon2id) or bcrypt string.
type StoredCredentials struct {
	UserId       AccountId
	Username     string
	PasswordHash string
}
