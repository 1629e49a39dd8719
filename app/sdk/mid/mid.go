// Package mid provides app level middleware support.
package mid

import (
	"context"
	"errors"

	"github.com/jcpaschoal/dealerdesk/business/domain/aclbus"
	"github.com/jcpaschoal/dealerdesk/business/domain/userbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/sqldb"
	"github.com/jcpaschoal/dealerdesk/business/sdk/web"
)

func isError(e web.Encoder) error {
	err, isError := e.(error)
	if isError {
		return err
	}

	return nil
}

// =============================================================================

type ctxKey int

const (
	principalKey ctxKey = iota + 1
	userKey
	trKey
)

func setPrincipal(ctx context.Context, p aclbus.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal returns the principal the request acts as. Requests that
// were not authenticated act as aclbus.Anonymous.
func GetPrincipal(ctx context.Context) aclbus.Principal {
	v, ok := ctx.Value(principalKey).(aclbus.Principal)
	if !ok {
		return aclbus.Anonymous
	}

	return v
}

func setUser(ctx context.Context, usr userbus.User) context.Context {
	return context.WithValue(ctx, userKey, usr)
}

// GetUser returns the authenticated user from the context.
func GetUser(ctx context.Context) (userbus.User, error) {
	v, ok := ctx.Value(userKey).(userbus.User)
	if !ok {
		return userbus.User{}, errors.New("user not found in context")
	}

	return v, nil
}

func setTran(ctx context.Context, tx sqldb.CommitRollbacker) context.Context {
	return context.WithValue(ctx, trKey, tx)
}

// GetTran retrieves the value that can manage a transaction.
func GetTran(ctx context.Context) (sqldb.CommitRollbacker, error) {
	v, ok := ctx.Value(trKey).(sqldb.CommitRollbacker)
	if !ok {
		return nil, errors.New("transaction not found in context")
	}

	return v, nil
}
