package userapp

import (
	"net/http"
	"strings"

	"github.com/jcpaschoal/dealerdesk/app/sdk/errs"
	"github.com/jcpaschoal/dealerdesk/app/sdk/ids"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/jcpaschoal/dealerdesk/business/types/userstatus"
)

type queryParams struct {
	Page    string
	Limit   string
	OrderBy string
	Owner   string
	Branch  string
	Q       string
	Role    string
	Status  string
}

func parseQueryParams(r *http.Request) queryParams {
	values := r.URL.Query()

	return queryParams{
		Page:    values.Get("page"),
		Limit:   values.Get("limit"),
		OrderBy: values.Get("orderBy"),
		Owner:   values.Get("owner"),
		Branch:  values.Get("branch"),
		Q:       values.Get("q"),
		Role:    values.Get("role"),
		Status:  values.Get("status"),
	}
}

// parseFilter returns the filter and the tenant explicitly asked for.
func parseFilter(qp queryParams) (userbus.QueryFilter, int64, *errs.Error) {
	var fieldErrors errs.FieldErrors
	var filter userbus.QueryFilter

	owner, err := ids.ParseOptional(qp.Owner)
	if err != nil {
		fieldErrors.Add("owner", err)
	}

	branch, err := ids.ParseOptional(qp.Branch)
	switch {
	case err != nil:
		fieldErrors.Add("branch", err)
	case branch != 0:
		filter.BranchID = &branch
	}

	if q := strings.TrimSpace(qp.Q); q != "" {
		filter.Q = &q
	}

	if strings.TrimSpace(qp.Role) != "" {
		r := role.Normalize(qp.Role)
		filter.Role = &r
	}

	if strings.TrimSpace(qp.Status) != "" {
		s := userstatus.Normalize(qp.Status)
		filter.Status = &s
	}

	if fieldErrors != nil {
		return userbus.QueryFilter{}, 0, fieldErrors.ToError()
	}

	return filter, owner, nil
}
