package auth

type Role string

const (
	RoleSuperAdmin    Role = "super_admin"
	RolePlatformAdmin Role = "admin_plataforma"
	RoleCompanyAdmin  Role = "admin_empresa"
	RoleCompanyUser   Role = "usuario_empresa"
)

var roleRank = map[Role]int{
	RoleSuperAdmin:    4,
	RolePlatformAdmin: 3,
	RoleCompanyAdmin:  2,
	RoleCompanyUser:   1,
}

// Rank is zero for unknown roles.
func (r Role) Rank() int {
	return roleRank[r]
}

func (r Role) Valid() bool {
	return r.Rank() > 0
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}
