package userbus

import "github.com/jcpaschoal/dealerdesk/business/sdk/order"

// DefaultOrderBy represents the default way we sort.
var DefaultOrderBy = order.NewBy(OrderByCreatedAt, order.DESC)

// Set of fields that the results can be ordered by.
const (
	OrderByID        = "id"
	OrderByName      = "name"
	OrderByEmail     = "email"
	OrderByRole      = "role"
	OrderByStatus    = "status"
	OrderByCreatedAt = "created_at"
)
