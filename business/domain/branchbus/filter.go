package branchbus

import (
	"github.com/jcpaschoal/dealerdesk/business/types/branchstatus"
	"github.com/jcpaschoal/dealerdesk/business/types/branchtype"
)

// QueryFilter holds the available fields a query can be filtered on.
type QueryFilter struct {
	ID       *int64
	TenantID *int64
	Type     *branchtype.BranchType
	Status   *branchstatus.BranchStatus
	Q        *string
}

// RequestFilter holds the fields a request listing can be filtered on.
type RequestFilter struct {
	TenantID *int64
	Status   *string
}
