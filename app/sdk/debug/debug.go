// Package debug provides the handler for the debug endpoints.
package debug

import (
	"expvar"
	"net/http"
	"net/http/pprof"

	"github.com/jcpaschoal/dealerdesk/app/sdk/metrics"
)

// Mux registers the profiling, expvar and prometheus endpoints on a mux of
// their own so they are never exposed on the api host.
func Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())
	mux.Handle("/metrics", metrics.Handler())

	return mux
}
