package services

import "go-storefront/models"

// Identity is the caller of an operation as established by the auth layer.
// A nil *Identity means no session.
type Identity struct {
	UserID string
	Email  string
	Role   string
	// Service is set for callers holding the service credential.
	Service bool
}

// IsAdmin reports whether the caller may use back office operations.
func (id *Identity) IsAdmin() bool {
	return id != nil && (id.Service || id.Role == models.RoleAdmin)
}

// CanActFor reports whether the caller may act on userID's rows.
func (id *Identity) CanActFor(userID string) bool {
	return id != nil && (id.IsAdmin() || id.UserID == userID)
}
