// Package session holds the client-side view of the authenticated user:
// the profile payload served by the backend and the process-wide snapshot
// store the rest of the application reads.
package session

// Profile is the authenticated user's profile as served by GET /auth/me
// and by a successful login. Field names match the backend wire format.
type Profile struct {
	// Username is the unique account name.
	Username string `json:"username"`
	// FirstName and LastName are the user's display name parts.
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	// Email is the account email address.
	Email string `json:"email"`
	// IsStaff and IsSuperuser mirror the backend's admin flags.
	IsStaff     bool `json:"is_staff"`
	IsSuperuser bool `json:"is_superuser"`
	// Manager flags are derived server-side from group membership.
	IsLocationManager bool `json:"is_location_manager"`
	IsRoomManager     bool `json:"is_room_manager"`
	IsAnyManager      bool `json:"is_any_manager"`
	// Role is the backend-assigned role name.
	Role string `json:"role"`
	// Groups lists the names of groups the user belongs to.
	Groups []string `json:"groups"`
}

// Clone returns a deep copy of the profile.
// The store hands out clones so callers can never mutate shared state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Groups != nil {
		cp.Groups = make([]string, len(p.Groups))
		copy(cp.Groups, p.Groups)
	}
	return &cp
}

// FullName returns "First Last", or the username when both parts are empty.
func (p *Profile) FullName() string {
	if p == nil {
		return ""
	}
	switch {
	case p.FirstName == "" && p.LastName == "":
		return p.Username
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}
