package userdb

import (
	"bytes"
	"strings"

	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
)

func applyFilter(filter userbus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	var wc []string

	if filter.ID != nil {
		data["id"] = *filter.ID
		wc = append(wc, "id = :id")
	}

	if filter.TenantID != nil {
		data["owner_id"] = *filter.TenantID
		wc = append(wc, "owner_id = :owner_id")
	}

	if filter.BranchID != nil {
		data["branch_id"] = *filter.BranchID
		wc = append(wc, "branch_id = :branch_id")
	}

	if filter.Role != nil {
		data["role"] = filter.Role.String()
		wc = append(wc, "role = :role")
	}

	if filter.Status != nil {
		data["status"] = filter.Status.String()
		wc = append(wc, "status = :status")
	}

	if filter.Q != nil {
		data["q"] = "%" + strings.ToLower(*filter.Q) + "%"
		wc = append(wc, "(LOWER(name) LIKE :q OR LOWER(email) LIKE :q OR phone LIKE :q)")
	}

	if len(wc) > 0 {
		buf.WriteString(" WHERE ")
		buf.WriteString(strings.Join(wc, " AND "))
	}
}
