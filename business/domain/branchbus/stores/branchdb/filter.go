package branchdb

import (
	"bytes"
	"strings"

	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
)

func applyFilter(filter branchbus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	var wc []string

	if filter.ID != nil {
		data["id"] = *filter.ID
		wc = append(wc, "id = :id")
	}

	if filter.TenantID != nil {
		data["owner_id"] = *filter.TenantID
		wc = append(wc, "owner_id = :owner_id")
	}

	if filter.Type != nil {
		data["type"] = filter.Type.String()
		wc = append(wc, "type = :type")
	}

	if filter.Status != nil {
		data["status"] = filter.Status.String()
		wc = append(wc, "status = :status")
	}

	if filter.Q != nil {
		data["q"] = "%" + strings.ToLower(*filter.Q) + "%"
		wc = append(wc, "(LOWER(code) LIKE :q OR LOWER(name) LIKE :q)")
	}

	writeWhere(buf, wc)
}

func applyRequestFilter(filter branchbus.RequestFilter, data map[string]any, buf *bytes.Buffer) {
	var wc []string

	if filter.TenantID != nil {
		data["owner_id"] = *filter.TenantID
		wc = append(wc, "owner_id = :owner_id")
	}

	if filter.Status != nil {
		data["status"] = *filter.Status
		wc = append(wc, "status = :status")
	}

	writeWhere(buf, wc)
}

func writeWhere(buf *bytes.Buffer, wc []string) {
	if len(wc) > 0 {
		buf.WriteString(" WHERE ")
		buf.WriteString(strings.Join(wc, " AND "))
	}
}
