package auth

// Role gates what an authenticated user may do.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Credential is a login fixture. Passwords are compared as plain text.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// DemoCredentials are the accounts accepted by Login. The first entry doubles
// as the hint shown on the login screen.
var DemoCredentials = []Credential{
	{Username: "owner", Password: "letmein#2025", Role: RoleAdmin},
}
