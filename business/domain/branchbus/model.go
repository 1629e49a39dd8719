package branchbus

import (
	"time"

	"github.com/jcpaschoal/dealerdesk/business/types/branchcode"
	"github.com/jcpaschoal/dealerdesk/business/types/branchstatus"
	"github.com/jcpaschoal/dealerdesk/business/types/branchtype"
	"github.com/jcpaschoal/dealerdesk/business/types/name"
	"github.com/jcpaschoal/dealerdesk/business/types/team"
)

// Branch represents an individual branch of a tenant.
type Branch struct {
	ID        int64
	TenantID  int64
	Code      branchcode.Code
	Name      name.Name
	Type      branchtype.BranchType
	Status    branchstatus.BranchStatus
	Team      team.Team
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBranch is what we require from clients when adding a Branch.
type NewBranch struct {
	TenantID int64
	Code     branchcode.Code
	Name     name.Name
	Type     branchtype.BranchType
	Status   branchstatus.BranchStatus
	Team     team.Team
}

// UpdateBranch defines what information may be provided to modify an
// existing Branch. Nil fields are left unchanged.
type UpdateBranch struct {
	Code   *branchcode.Code
	Name   *name.Name
	Type   *branchtype.BranchType
	Status *branchstatus.BranchStatus
	Team   *team.Team
}

// =============================================================================

// RequestStatusPending is the status of every request when it is filed.
const RequestStatusPending = "pending"

// Request is a tenant's ask for admin approval to go beyond its branch
// quota.
type Request struct {
	ID             int64
	TenantID       int64
	RequestedCount int
	Reason         string
	Status         string
	CreatedAt      time.Time
}

// Quota describes how a creation is checked against the tenant's limit.
type Quota struct {
	Enforce bool
	Limit   int
	Reason  string
}
