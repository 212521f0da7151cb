package middleware

import (
	"context"
	"fmt"
	"net/http"

	pkgerrors "github.com/timele/timele-backend/pkg/errors"
	"github.com/timele/timele-backend/pkg/logger"
)

// ErrorWriter serializes a failure in the hosting process's envelope;
// the gateway and the edge render errors differently.
type ErrorWriter func(ctx context.Context, w http.ResponseWriter, err error)

func Recoverer(logg *logger.Logger, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					ctx := r.Context()
					if logg != nil {
						ctx = logg.WithFields(ctx, map[string]any{"panic": rec})
						logg.Error(ctx, "panic.recovered", err)
					}
					writeErr(ctx, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
