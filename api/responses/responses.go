package responses

import (
	"context"
	"encoding/json"
	"net/http"

	pkgerrors "github.com/timele/timele-backend/pkg/errors"
	"github.com/timele/timele-backend/pkg/logger"
	"github.com/timele/timele-backend/pkg/types"
)

// WriteSuccess renders the external success envelope.
func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.EdgeEnvelope{Message: message, Data: data})
}

// WriteError renders the external failure envelope. Client-caused
// failures surface their typed message; server-side failures only the
// public one, so SQL and stack text never reach the browser.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	code := pkgerrors.CodeInternal
	typed := pkgerrors.As(err)
	if typed != nil {
		code = typed.Code()
	}

	meta := pkgerrors.MetadataFor(code)
	detail := meta.PublicMessage
	if typed != nil && meta.HTTPStatus < http.StatusInternalServerError && typed.Message() != "" {
		detail = typed.Message()
	}

	if logg != nil {
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(logg.WithField(ctx, "error_chain", pkgerrors.Dump(err)), "request.failed", err)
		} else {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "request.rejected")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(meta.HTTPStatus)
	json.NewEncoder(w).Encode(types.EdgeError{Detail: detail})
}
