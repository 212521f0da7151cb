package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/timele/timele-backend/pkg/errors"
	"github.com/timele/timele-backend/pkg/logger"
)

func TestWriteErrorLogsDriverChainButHidesIt(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	cause := &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	err := pkgerrors.Wrap(pkgerrors.CodeInternal, cause, "checkout failed")

	rec := httptest.NewRecorder()
	WriteError(context.Background(), logg, rec, err)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	// Driver detail reaches the log, never the response body.
	assert.Contains(t, buf.String(), "error_chain")
	assert.Contains(t, buf.String(), "40001")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body["detail"], "40001")
	assert.NotContains(t, body["detail"], "checkout failed")
}

func TestWriteErrorEchoesTypedMessageOn4xx(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	rec := httptest.NewRecorder()
	WriteError(context.Background(), logg, rec, pkgerrors.New(pkgerrors.CodeAuthFailed, "invalid credentials"))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, buf.String(), "error_chain")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid credentials", body["detail"])
}
