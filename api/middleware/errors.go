package middleware

import (
	"context"
	"net/http"

	"github.com/fullscopemd/storefront/api/web"
	"github.com/fullscopemd/storefront/api/weberr"
	"github.com/sirupsen/logrus"
)

// Errors logs every error returned by a handler and turns it into a response.
// Errors carrying a response body keep it; anything else becomes a bare 500 so
// internal details never reach the client.
func Errors(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			fields := logrus.Fields{
				"req_id":  ContextRequestID(ctx),
				"message": err,
			}
			if f, ok := weberr.Fields(err); ok {
				for k, v := range f {
					fields[k] = v
				}
			}

			body, code, ok := weberr.Response(err)
			if ok && code < http.StatusInternalServerError {
				log.WithFields(fields).Warn("request failed")
			} else {
				log.WithFields(fields).Error("ERROR")
			}

			if ok {
				return web.Respond(ctx, w, body, code)
			}

			er := weberr.ErrorResponse{
				Error: http.StatusText(http.StatusInternalServerError),
			}
			return web.Respond(ctx, w, er, http.StatusInternalServerError)
		}
		return h
	}
	return m
}
