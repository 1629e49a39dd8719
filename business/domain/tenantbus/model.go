package tenantbus

import "time"

// DefaultBranchQuota is the number of branches a new tenant may create
// without admin approval.
const DefaultBranchQuota = 1

// Tenant represents the account an owner manages branches and staff under.
type Tenant struct {
	ID          int64
	UserID      int64
	WebAppURL   string
	LogoURL     string
	BranchQuota int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpdateTenant contains information needed to update a tenant. Nil fields
// are left unchanged.
type UpdateTenant struct {
	WebAppURL   *string
	LogoURL     *string
	BranchQuota *int
}
