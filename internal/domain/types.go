package domain

// Roles carried in staff tokens.
const (
	RoleAdmin  = "admin"
	RoleDriver = "driver"
)

// RequestContext carries authenticated staff info when available.
type RequestContext struct {
	StaffID  int64  `json:"staffId"`
	Role     string `json:"role"`
	DriverID int64  `json:"driverId,omitempty"`
}

// IsAdmin reports whether the caller may use administrative surfaces.
func (r RequestContext) IsAdmin() bool {
	return r.Role == RoleAdmin
}
