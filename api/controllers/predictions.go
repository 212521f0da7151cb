package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/timele/timele-backend/api/responses"
	"github.com/timele/timele-backend/api/validators"
	"github.com/timele/timele-backend/internal/gatewayclient"
	"github.com/timele/timele-backend/internal/recs"
	"github.com/timele/timele-backend/internal/users"
	"github.com/timele/timele-backend/pkg/logger"
)

// PredictionsController fronts the best-effort recommendation
// endpoint. The recommender never causes a 5xx here; only an unknown
// user does a non-200.
type PredictionsController struct {
	Gateway     *gatewayclient.Client
	Recommender *recs.Client
	Logger      *logger.Logger
}

func (c *PredictionsController) Predict(w http.ResponseWriter, r *http.Request) {
	userID, err := users.ParseExternalID(chi.URLParam(r, "user_id"))
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	limit, err := validators.ParseQueryInt(r, "limit", 10, 1, 100)
	if err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	// The user must exist even when the recommender is down.
	if _, err := c.Gateway.GetUser(r.Context(), userID); err != nil {
		responses.WriteError(r.Context(), c.Logger, w, err)
		return
	}

	result := c.Recommender.Predict(r.Context(), userID, limit)
	responses.WriteSuccess(w, http.StatusOK, "Predictions retrieved", result)
}
