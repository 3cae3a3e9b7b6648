package entity

// Role is the coarse global permission level. It is the single canonical
// spelling; the authorization gate and the seed data both use it.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleScrumMaster Role = "SCRUM_MASTER"
	RoleUser        Role = "USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleScrumMaster, RoleUser:
		return true
	}
	return false
}

// Elevated reports whether the role may perform collaborative mutations
// (add members, edit projects, delete work items, create EPIC/FEATURE items).
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleScrumMaster
}

// TeamRole is the finer per-team membership role, distinct from the global Role.
type TeamRole string

const (
	TeamRoleAdmin       TeamRole = "ADMIN"
	TeamRoleManager     TeamRole = "MANAGER"
	TeamRoleLead        TeamRole = "LEAD"
	TeamRoleMember      TeamRole = "MEMBER"
	TeamRoleViewer      TeamRole = "VIEWER"
	TeamRoleScrumMaster TeamRole = "SCRUM_MASTER"
)

func (r TeamRole) Valid() bool {
	switch r {
	case TeamRoleAdmin, TeamRoleManager, TeamRoleLead, TeamRoleMember, TeamRoleViewer, TeamRoleScrumMaster:
		return true
	}
	return false
}
