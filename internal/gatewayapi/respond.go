package gatewayapi

import (
	"context"
	"encoding/json"
	"net/http"

	pkgerrors "github.com/timele/timele-backend/pkg/errors"
	"github.com/timele/timele-backend/pkg/logger"
	"github.com/timele/timele-backend/pkg/types"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeError renders the internal wire error envelope. The status is
// derived from the code; typed messages pass through unmodified since
// the only caller is the edge process.
func writeError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	code := pkgerrors.CodeInternal
	message := pkgerrors.MetadataFor(code).PublicMessage

	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
		message = typed.Message()
	}

	meta := pkgerrors.MetadataFor(code)
	if logg != nil {
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(logg.WithField(ctx, "error_chain", pkgerrors.Dump(err)), "request.failed", err)
		} else {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "request.rejected")
		}
	}

	writeJSON(w, meta.HTTPStatus, types.GatewayErrorEnvelope{
		Error: types.GatewayError{Code: string(code), Message: message},
	})
}
