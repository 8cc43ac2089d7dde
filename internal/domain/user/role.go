package user

// Role is the numeric role the storefront API attaches to an account.
type Role int

const (
	RoleCustomer Role = 0
	RoleAdmin    Role = 1
)

// IsAdmin reports whether the role grants the admin capability.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	if r.IsAdmin() {
		return "admin"
	}
	return "customer"
}
