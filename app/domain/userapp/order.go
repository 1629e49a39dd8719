package userapp

import (
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
)

var orderByFields = map[string]string{
	"id":         userbus.OrderByID,
	"name":       userbus.OrderByName,
	"email":      userbus.OrderByEmail,
	"role":       userbus.OrderByRole,
	"status":     userbus.OrderByStatus,
	"created_at": userbus.OrderByCreatedAt,
}
