package mid

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jcpaschoal/dealerdesk/app/sdk/metrics"
	"github.com/jcpaschoal/dealerdesk/business/sdk/web"
)

// Metrics updates program counters.
func Metrics() web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)

			statusCode := http.StatusOK
			if s, ok := resp.(interface{ HTTPStatus() int }); ok {
				statusCode = s.HTTPStatus()
			}

			n := metrics.AddRequests(ctx, r.Method, strconv.Itoa(statusCode))

			if n%1000 == 0 {
				metrics.AddGoroutines(ctx)
			}

			if isError(resp) != nil {
				metrics.AddErrors(ctx)
			}

			return resp
		}

		return h
	}

	return m
}
