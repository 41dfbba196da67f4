package domain

// Role represents a user's access level.
type Role string

const (
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleOperator || r == RoleAdmin
}

// User represents an operator or administrator of the exchange.
// Credentials (email, password hash) live in the credentials file; the
// relational row carries display name and role.
type User struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// IsAdmin returns true for administrator accounts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
