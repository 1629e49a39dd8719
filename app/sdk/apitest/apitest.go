// Package apitest runs the full web api against in-memory stores.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jcpaschoal/dealerdesk/api/cmd/build/all"
	"github.com/jcpaschoal/dealerdesk/app/sdk/auth"
	"github.com/jcpaschoal/dealerdesk/app/sdk/mux"
	"github.com/jcpaschoal/dealerdesk/business/domain/aclbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/branchbus/stores/branchmem"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/tenantbus/stores/tenantmem"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus/stores/usermem"
	"github.com/jcpaschoal/dealerdesk/business/types/branchcode"
	"github.com/jcpaschoal/dealerdesk/business/types/branchstatus"
	"github.com/jcpaschoal/dealerdesk/business/types/branchtype"
	"github.com/jcpaschoal/dealerdesk/business/types/name"
	"github.com/jcpaschoal/dealerdesk/business/types/password"
	"github.com/jcpaschoal/dealerdesk/business/types/role"
	"github.com/jcpaschoal/dealerdesk/business/types/userstatus"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

// Password is the password of every seeded user.
const Password = "secret123"

// Test holds an api wired to fresh in-memory stores.
type Test struct {
	Handler   http.Handler
	UserBus   *userbus.Core
	TenantBus *tenantbus.Core
	BranchBus *branchbus.Core
	ACLBus    *aclbus.Core
	Auth      *auth.Auth
	seq       atomic.Int64
}

// New constructs a Test.
func New(t *testing.T) *Test {
	t.Helper()

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", func(context.Context) string { return "" })

	userBus := userbus.NewCore(log, usermem.NewStore())
	tenantBus := tenantbus.NewCore(log, tenantmem.NewStore())
	branchBus := branchbus.NewCore(log, branchmem.Beginner{}, branchmem.NewStore())

	aclBus, err := aclbus.NewCore(log, tenantBus)
	require.NoError(t, err)

	ath := auth.New(auth.Config{
		Log:     log,
		Codec:   auth.NewTokenCodec("test-secret", time.Hour),
		UserBus: userBus,
		ACLBus:  aclBus,
	})

	cfg := mux.Config{
		Build:    "test",
		Log:      log,
		Beginner: branchmem.Beginner{},
		Tracer:   noop.NewTracerProvider().Tracer("test"),
		Auth:     ath,
		Bus: mux.BusConfig{
			UserBus:   userBus,
			TenantBus: tenantBus,
			BranchBus: branchBus,
			ACLBus:    aclBus,
		},
	}

	return &Test{
		Handler:   mux.WebAPI(cfg, all.Routes()),
		UserBus:   userBus,
		TenantBus: tenantBus,
		BranchBus: branchBus,
		ACLBus:    aclBus,
		Auth:      ath,
	}
}

// =============================================================================

// User seeds an active user with the role attached to the tenant and
// branch. Zero ids leave the user unattached.
func (at *Test) User(t *testing.T, r role.Role, tenantID int64, branchID int64) userbus.User {
	t.Helper()

	n := at.seq.Add(1)

	usr, err := at.UserBus.Create(context.Background(), userbus.NewUser{
		Name:     name.MustParse(fmt.Sprintf("%s %d", r, n)),
		Email:    mail.Address{Address: fmt.Sprintf("%s%d@example.com", r, n)},
		Password: password.MustParse(Password),
		Role:     r,
		Status:   userstatus.Active,
		TenantID: tenantID,
		BranchID: branchID,
	})
	require.NoError(t, err)

	return usr
}

// Owner seeds an owner together with its tenant.
func (at *Test) Owner(t *testing.T, quota int) (userbus.User, tenantbus.Tenant) {
	t.Helper()

	ctx := context.Background()

	usr := at.User(t, role.Owner, 0, 0)

	tnt, err := at.TenantBus.EnsureForUser(ctx, usr.ID, &quota)
	require.NoError(t, err)

	tid := tnt.ID
	usr, err = at.UserBus.Update(ctx, usr, userbus.UpdateUser{TenantID: &tid})
	require.NoError(t, err)

	return usr, tnt
}

// Branch seeds a branch of the tenant outside of any quota.
func (at *Test) Branch(t *testing.T, tenantID int64, code string) branchbus.Branch {
	t.Helper()

	b, err := at.BranchBus.Create(context.Background(), branchbus.NewBranch{
		TenantID: tenantID,
		Code:     branchcode.MustParse(code),
		Name:     name.MustParse("Branch " + code),
		Type:     branchtype.SalesAndServices,
		Status:   branchstatus.Active,
	}, branchbus.Quota{})
	require.NoError(t, err)

	return b
}

// Token issues a token for the user.
func (at *Test) Token(t *testing.T, usr userbus.User) string {
	t.Helper()

	token, err := at.Auth.GenerateToken(usr)
	require.NoError(t, err)

	return token
}

// =============================================================================

// Response is a recorded response with its decoded document.
type Response struct {
	Status int
	Body   map[string]any
}

// Message returns the message of the document.
func (r Response) Message() string {
	s, _ := r.Body["message"].(string)
	return s
}

// Data returns the data object of the document.
func (r Response) Data() map[string]any {
	d, _ := r.Body["data"].(map[string]any)
	return d
}

// Items returns the items of a listing.
func (r Response) Items() []any {
	items, _ := r.Data()["items"].([]any)
	return items
}

// Total returns the total of a listing.
func (r Response) Total() int {
	f, _ := r.Data()["total"].(float64)
	return int(f)
}

// Do sends the request with the token, when one is given, and decodes the
// response document. A non nil body is sent as json.
func (at *Test) Do(t *testing.T, method string, path string, token string, body any) Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, path, rd)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	at.Handler.ServeHTTP(w, r)

	resp := Response{Status: w.Code}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp.Body), w.Body.String())
	}

	return resp
}
