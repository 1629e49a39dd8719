package aclbus

import (
	"github.com/jcpaschoal/dealerdesk/business/types/role"
)

// Principal is the acting identity a request is authorized as. TenantID is
// zero when the principal has no tenant and BranchID is zero when it is not
// bound to a branch. An empty UserID means no one is signed in.
type Principal struct {
	UserID   int64
	Role     role.Role
	TenantID int64
	BranchID int64
}

// Anonymous is the principal of a request without credentials.
var Anonymous = Principal{}

// Authenticated reports whether the principal belongs to a signed in user.
func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == role.Admin
}

// Target describes the record an action is attempted on.
type Target struct {
	// TenantID owns the record. For listings it is the tenant being listed.
	TenantID int64

	// BranchID is the branch record itself for branch actions.
	BranchID int64

	// UserID is the user record for user actions and the future owner for
	// tenant creation.
	UserID int64

	// AssignRole is set when the action grants a role to a user.
	AssignRole *role.Role

	// Settings is set when the action changes tenant wide settings such as
	// the branch quota.
	Settings bool

	// FirstTenant is set when the action creates the tenant of a user that
	// has none yet.
	FirstTenant bool
}

// =============================================================================

// Reason classifies a denial.
type Reason string

// The set of denial reasons.
const (
	Unauthenticated       Reason = "unauthenticated"
	ForbiddenCrossTenant  Reason = "forbidden-cross-tenant"
	ForbiddenEscalation   Reason = "forbidden-role-escalation"
	ForbiddenRoleRequired Reason = "forbidden-role-required"
)

// DenialError is returned when a principal may not perform an action.
// Message is safe to show to the client.
type DenialError struct {
	Reason  Reason
	Message string
}

func (e *DenialError) Error() string {
	return string(e.Reason) + ": " + e.Message
}

func deny(r Reason, msg string) *DenialError {
	return &DenialError{Reason: r, Message: msg}
}

// =============================================================================

// ScopeKind says how far a listing may reach.
type ScopeKind int

// The set of scope kinds.
const (
	ScopeNone ScopeKind = iota
	ScopeAll
	ScopeTenant
	ScopeBranch
)

var scopeNames = map[ScopeKind]string{
	ScopeNone:   "none",
	ScopeAll:    "all",
	ScopeTenant: "tenant",
	ScopeBranch: "branch",
}

func (k ScopeKind) String() string {
	return scopeNames[k]
}

// Scope restricts a listing. A ScopeTenant scope carries the tenant and a
// ScopeBranch scope the single branch that may be returned.
type Scope struct {
	Kind     ScopeKind
	TenantID int64
	BranchID int64
}
