package domain

// Role is the coarse authorization tag stored on a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Capability is a permission tag granted through a role.
type Capability string

const (
	CapManageAnyTask Capability = "tasks:manage_any"
	CapReadAudit     Capability = "audit:read"
)

var roleCapabilities = map[Role][]Capability{
	RoleUser:  nil,
	RoleAdmin: {CapManageAnyTask, CapReadAudit},
}

// ParseRole maps stored values to a known role, defaulting to RoleUser.
func ParseRole(value string) Role {
	switch Role(value) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Capabilities lists the capabilities granted to the role.
func (r Role) Capabilities() []Capability {
	return roleCapabilities[r]
}

// Has reports whether the role grants the capability.
func (r Role) Has(capability Capability) bool {
	for _, c := range roleCapabilities[r] {
		if c == capability {
			return true
		}
	}
	return false
}

// Actor is the authenticated identity attempting an operation.
type Actor struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

func (a Actor) Can(capability Capability) bool {
	return a.Role.Has(capability)
}
