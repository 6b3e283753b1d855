package domain

// RoleUser is the role assigned to accounts created without an explicit role.
const RoleUser = "user"

// User represents a stored user account.
type User struct {
	ID           int64  // Unique identifier
	Username     string // Login username, unique and case-sensitive
	PasswordHash []byte // bcrypt hash of the password
	Role         string // Free-form role string, defaults to "user"
	CreatedAt    int64  // Unix timestamp of account creation
	LastLogin    int64  // Unix timestamp of the last successful login, 0 if never
}

// Principal is the minimal projection of a User attached to a session after
// successful verification. It never carries the password hash.
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Principal returns the session projection of the user.
func (u *User) Principal() Principal {
	return Principal{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
	}
}
