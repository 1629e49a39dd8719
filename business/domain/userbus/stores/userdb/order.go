package userdb

import (
	"fmt"

	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/order"
)

var orderByFields = map[string]string{
	userbus.OrderByID:        "id",
	userbus.OrderByName:      "name",
	userbus.OrderByEmail:     "email",
	userbus.OrderByRole:      "role",
	userbus.OrderByStatus:    "status",
	userbus.OrderByCreatedAt: "created_at",
}

// orderByClause appends id as a tiebreak so pages are stable.
func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	if by == "id" {
		return " ORDER BY id " + orderBy.Direction, nil
	}

	return " ORDER BY " + by + " " + orderBy.Direction + ", id " + orderBy.Direction, nil
}
