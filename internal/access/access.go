// Package access holds the authorization checks consulted by every service operation.
package access

import "github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"

// Principal is the identity attached to a request.
type Principal struct {
	Authenticated bool
	Anonymous     bool
	Username      string
	Roles         []models.Role
}

// Anonymous returns the principal used for requests without credentials.
func Anonymous() *Principal {
	return &Principal{Anonymous: true}
}

// ForUser returns an authenticated principal holding role.
func ForUser(username string, role models.Role) *Principal {
	return &Principal{Authenticated: true, Username: username, Roles: []models.Role{role}}
}

// HasRole reports whether the principal was granted role.
func (p *Principal) HasRole(role models.Role) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for HasRole(models.RoleAdmin).
func (p *Principal) IsAdmin() bool {
	return p.HasRole(models.RoleAdmin)
}

// CheckAuthenticated fails with Unauthorized for a nil, unauthenticated or anonymous principal.
func CheckAuthenticated(p *Principal) error {
	if p == nil || !p.Authenticated || p.Anonymous {
		return models.NewUnauthorizedError(models.MsgInvalidCredentials)
	}
	return nil
}

// CheckOwnerOrAdmin requires an authenticated principal that either is ownerUsername or holds ADMIN.
func CheckOwnerOrAdmin(p *Principal, ownerUsername string) error {
	if err := CheckAuthenticated(p); err != nil {
		return err
	}
	if p.Username == ownerUsername || p.IsAdmin() {
		return nil
	}
	return models.NewForbiddenError(models.MsgAccessDenied)
}

// CheckAdmin requires the ADMIN role. Callers must pass a non-nil principal;
// a nil one is treated as lacking the role.
func CheckAdmin(p *Principal) error {
	if !p.IsAdmin() {
		return models.NewForbiddenError(models.MsgOnlyAdmin)
	}
	return nil
}
