package branchbus

import "github.com/jcpaschoal/dealerdesk/business/sdk/order"

// DefaultOrderBy represents the default way we sort.
var DefaultOrderBy = order.NewBy(OrderByCreatedAt, order.DESC)

// Set of fields that the results can be ordered by.
const (
	OrderByID        = "id"
	OrderByCode      = "code"
	OrderByName      = "name"
	OrderByType      = "type"
	OrderByStatus    = "status"
	OrderByCreatedAt = "created_at"
)
