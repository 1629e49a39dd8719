package branchdb

import (
	"fmt"

	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/order"
)

var orderByFields = map[string]string{
	branchbus.OrderByID:        "id",
	branchbus.OrderByCode:      "code",
	branchbus.OrderByName:      "name",
	branchbus.OrderByType:      "type",
	branchbus.OrderByStatus:    "status",
	branchbus.OrderByCreatedAt: "created_at",
}

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
