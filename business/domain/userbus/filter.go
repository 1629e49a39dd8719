package userbus

import (
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/jcpaschoal/dealerdesk/business/types/userstatus"
)

// QueryFilter holds the available fields a query can be filtered on.
type QueryFilter struct {
	ID       *int64
	TenantID *int64
	BranchID *int64
	Role     *role.Role
	Status   *userstatus.UserStatus
	Q        *string
}
