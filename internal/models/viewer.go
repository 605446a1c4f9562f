package models

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// Viewer is the authenticated caller a service call acts for.
type Viewer struct {
	UserID string
	Role   string
}

func (v Viewer) IsAdmin() bool {
	return v.Role == RoleAdmin
}

// CanManage reports whether the viewer owns, or administers, something
// created by ownerID.
func (v Viewer) CanManage(ownerID string) bool {
	return v.IsAdmin() || (v.UserID != "" && v.UserID == ownerID)
}
