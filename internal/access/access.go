package access

import (
	"errors"

	"github.com/JustJay7/fir-manager/internal/database"
)

// ErrForbidden is returned when a policy denies access to an FIR
var ErrForbidden = errors.New("forbidden")

// Policy decides what a user may do. It is resolved once per request with For.
type Policy interface {
	// CanAccess reports whether the user may view or modify the FIR
	CanAccess(fir *database.FIR) bool
	IsAdmin() bool
	IsOfficer() bool
	UserID() uint
}

// For resolves the policy for a user's role. A nil user gets Other.
func For(user *database.User) Policy {
	if user == nil {
		return Other{}
	}
	switch user.Role {
	case database.RoleAdmin:
		return Admin{id: user.ID}
	case database.RolePoliceOfficer:
		return Officer{id: user.ID}
	default:
		return Other{id: user.ID}
	}
}

// Require returns ErrForbidden unless p can access fir
func Require(p Policy, fir *database.FIR) error {
	if !p.CanAccess(fir) {
		return ErrForbidden
	}
	return nil
}

// Admin passes every check
type Admin struct{ id uint }

func (Admin) CanAccess(*database.FIR) bool { return true }
func (Admin) IsAdmin() bool                { return true }
func (Admin) IsOfficer() bool              { return false }
func (a Admin) UserID() uint               { return a.id }

// Officer passes for FIRs they own or are on the team of. Sharing a station
// grants nothing. The FIR's Team must be loaded.
type Officer struct{ id uint }

func (o Officer) CanAccess(fir *database.FIR) bool {
	if fir == nil {
		return false
	}
	return fir.OfficerID == o.id || fir.HasTeamMember(o.id)
}
func (Officer) IsAdmin() bool   { return false }
func (Officer) IsOfficer() bool { return true }
func (o Officer) UserID() uint  { return o.id }

// Other covers unknown roles and anonymous callers
type Other struct{ id uint }

func (Other) CanAccess(*database.FIR) bool { return false }
func (Other) IsAdmin() bool                { return false }
func (Other) IsOfficer() bool              { return false }
func (o Other) UserID() uint               { return o.id }
