package mid

import (
	"context"
	"errors"
	"net/http"
	"path"

	"github.com/jcpaschoal/dealerdesk/app/sdk/errs"
	"github.com/jcpaschoal/dealerdesk/business/domain/aclbus"
	"github.com/jcpaschoal/dealerdesk/business/sdk/web"
	"github.com/jcpaschoal/dealerdesk/foundation/logger"
)

// Errors handles errors coming out of the call chain. Every error leaves as
// a {success:false, message} document. Internal failures are logged with
// their detail and answered with a generic message.
func Errors(log *logger.Logger) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)
			err := isError(resp)
			if err == nil {
				return resp
			}

			var appErr *errs.Error
			switch {
			case errs.IsError(err):
				appErr = errs.GetError(err)

			case asDenial(err, new(*aclbus.DenialError)):
				appErr = Denied(err)

			default:
				appErr = errs.Errorf(errs.Internal, "%s", err)
			}

			log.Error(ctx, "handled error during request",
				"err", err,
				"source_err_file", path.Base(appErr.FileName),
				"source_err_func", path.Base(appErr.FuncName))

			switch appErr.Code {
			case errs.Internal, errs.InternalOnlyLog, errs.Unknown, errs.DataLoss:
				appErr = errs.Errorf(appErr.Code, "Internal server error")
			}

			return appErr
		}

		return h
	}

	return m
}

func asDenial(err error, target **aclbus.DenialError) bool {
	return errors.As(err, target)
}
