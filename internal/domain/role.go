package domain

// Role enumerates the coarse privilege tiers.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleEmployee   Role = "EMPLOYEE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleEmployee:
		return true
	}
	return false
}

// Privileged reports whether r is listed with the administrators.
func (r Role) Privileged() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}
