package domain

// Role represents a permission level in the community hierarchy.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
	RoleSiteOwner Role = "site_owner"
)

// roleRank is the single source of truth for role ordering. No other package
// may redefine these numbers.
var roleRank = map[Role]int{
	RoleUser:      1,
	RoleModerator: 2,
	RoleAdmin:     3,
	RoleSiteOwner: 4,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries at least the privilege of required.
// An unknown role ranks below everything.
func (r Role) AtLeast(required Role) bool {
	return roleRank[r] >= roleRank[required]
}

// CanChangeRole decides whether an actor may set a subject's role.
// A nil return means the change is allowed.
//
//   - site_owner may set any role, except demoting the last remaining
//     site_owner away from site_owner.
//   - admin may only set user or moderator. Demoting a fellow admin is
//     allowed; promoting anyone to admin or site_owner is not, regardless
//     of the subject's current role.
//   - everyone else is denied.
//
// The caller supplies lastSiteOwner; this function performs no I/O.
func CanChangeRole(actor, subjectCurrent, requested Role, lastSiteOwner bool) error {
	if !requested.Valid() {
		return ErrInvalidRole
	}

	switch actor {
	case RoleSiteOwner:
		if subjectCurrent == RoleSiteOwner && requested != RoleSiteOwner && lastSiteOwner {
			return ErrLastSiteOwner
		}
		return nil
	case RoleAdmin:
		if requested == RoleUser || requested == RoleModerator {
			return nil
		}
		return ErrInsufficientPermissions
	default:
		return ErrInsufficientPermissions
	}
}
