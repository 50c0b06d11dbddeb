// Package policy decides what each role may do to a user or team record.
//
// Authorization rules (deny by default):
//   - Super Admin: creates Admins and Employees; updates and deletes any Admin or Employee;
//     manages every Team; edits their own profile.
//   - Admin: creates Employees only; updates and deletes Employees other than themselves;
//     manages every Team; edits their own profile.
//   - Employee: read-only on the directory; edits their own profile.
//   - Nobody modifies or deletes a Super Admin record through the manage-users path.
package policy

import "github.com/spec-kit/org-directory/internal/domain"

// Operation names an action subject to authorization.
type Operation string

const (
	OpViewDirectory    Operation = "viewDirectory"
	OpCreateUser       Operation = "createUser"
	OpCreateAdmin      Operation = "createAdmin"
	OpUpdateUser       Operation = "updateUser"
	OpDeleteUser       Operation = "deleteUser"
	OpUpdateOwnProfile Operation = "updateOwnProfile"
	OpCreateTeam       Operation = "createTeam"
	OpUpdateTeam       Operation = "updateTeam"
	OpDeleteTeam       Operation = "deleteTeam"
)

// CreateOperation returns the operation required to create a user with role.
// ok is false for roles that can never be created.
func CreateOperation(role domain.Role) (op Operation, ok bool) {
	switch role {
	case domain.RoleEmployee:
		return OpCreateUser, true
	case domain.RoleAdmin:
		return OpCreateAdmin, true
	}
	return "", false
}

// CanPerform reports whether actor may perform op. target is the user record the
// operation touches and is nil for operations without a user target.
func CanPerform(actor domain.Actor, op Operation, target *domain.User) bool {
	if !actor.Role.Valid() {
		return false
	}

	switch op {
	case OpViewDirectory:
		return true
	case OpCreateUser:
		return actor.Role.Privileged()
	case OpCreateAdmin:
		return actor.Role == domain.RoleSuperAdmin
	case OpUpdateUser, OpDeleteUser:
		return canManageUser(actor, target)
	case OpUpdateOwnProfile:
		return target != nil && actor.Is(target.ID)
	case OpCreateTeam, OpUpdateTeam, OpDeleteTeam:
		return actor.Role.Privileged()
	default:
		return false
	}
}

// TargetImmutable reports whether target is protected by the super admin guard.
// The guard runs before any field-level merge.
func TargetImmutable(target *domain.User) bool {
	return target != nil && target.Role == domain.RoleSuperAdmin
}

func canManageUser(actor domain.Actor, target *domain.User) bool {
	if target == nil || TargetImmutable(target) {
		return false
	}
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return target.Role == domain.RoleAdmin || target.Role == domain.RoleEmployee
	case domain.RoleAdmin:
		// self-edit goes through the own-profile path
		return target.Role == domain.RoleEmployee && !actor.Is(target.ID)
	default:
		return false
	}
}

// DesignationEditable reports whether a designation change on target is honoured.
// Only employees carry a meaningful designation.
func DesignationEditable(target *domain.User) bool {
	return target != nil && target.Role == domain.RoleEmployee
}
