package models

type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleAdmin   UserRole = "admin"
	RoleService UserRole = "service"
)

// Principal is the identity a request acts as. It is resolved once at the
// HTTP (or CLI) boundary and passed down explicitly.
type Principal struct {
	UserID string   `json:"user_id"` // uuid from Supabase Auth, or DEFAULT_PRINCIPAL_ID
	Role   UserRole `json:"role"`
}

func (p Principal) IsZero() bool { return p.UserID == "" }

// SystemPrincipal is the identity of the CLI and the background workers.
func SystemPrincipal(userID string) Principal {
	return Principal{UserID: userID, Role: RoleService}
}

// AnonymousPrincipal is used for HTTP requests that carry no token. It has
// the plain user role so role-guarded routes stay closed.
func AnonymousPrincipal(userID string) Principal {
	return Principal{UserID: userID, Role: RoleUser}
}
