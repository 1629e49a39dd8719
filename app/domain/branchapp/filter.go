package branchapp

import (
	"net/http"
	"strings"

	"github.com/jcpaschoal/dealerdesk/app/sdk/errs"
	"github.com/jcpaschoal/dealerdesk/app/sdk/ids"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/types/branchstatus"
	"github.com/jcpaschoal/dealerdesk/business/types/branchtype"
)

type queryParams struct {
	Page   string
	Limit  string
	Owner  string
	Q      string
	Status string
	Type   string
}

func parseQueryParams(r *http.Request) queryParams {
	values := r.URL.Query()

	return queryParams{
		Page:   values.Get("page"),
		Limit:  values.Get("limit"),
		Owner:  values.Get("owner"),
		Q:      values.Get("q"),
		Status: values.Get("status"),
		Type:   values.Get("type"),
	}
}

// parseFilter returns the filter and the tenant explicitly asked for.
func parseFilter(qp queryParams) (branchbus.QueryFilter, int64, *errs.Error) {
	var fieldErrors errs.FieldErrors
	var filter branchbus.QueryFilter

	owner, err := ids.ParseOptional(qp.Owner)
	if err != nil {
		fieldErrors.Add("owner", err)
	}

	if q := strings.TrimSpace(qp.Q); q != "" {
		filter.Q = &q
	}

	if strings.TrimSpace(qp.Status) != "" {
		s := branchstatus.Normalize(qp.Status)
		filter.Status = &s
	}

	if strings.TrimSpace(qp.Type) != "" {
		t := branchtype.Normalize(qp.Type)
		filter.Type = &t
	}

	if fieldErrors != nil {
		return branchbus.QueryFilter{}, 0, fieldErrors.ToError()
	}

	return filter, owner, nil
}

func parseRequestFilter(qp queryParams) (branchbus.RequestFilter, *errs.Error) {
	var filter branchbus.RequestFilter

	owner, err := ids.ParseOptional(qp.Owner)
	if err != nil {
		return branchbus.RequestFilter{}, errs.NewFieldErrors("owner", err)
	}

	if owner != 0 {
		filter.TenantID = &owner
	}

	if s := strings.ToLower(strings.TrimSpace(qp.Status)); s != "" {
		filter.Status = &s
	}

	return filter, nil
}
