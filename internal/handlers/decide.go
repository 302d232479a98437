package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/benvon/smart-decide/internal/decision"
	logpkg "github.com/benvon/smart-decide/internal/logger"
	"github.com/benvon/smart-decide/internal/models"
	"github.com/benvon/smart-decide/internal/request"
	"github.com/benvon/smart-decide/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Recommender produces a recommendation for a validated decision request
type Recommender interface {
	Recommend(ctx context.Context, req models.DecisionContext) (models.Recommendation, error)
}

// DecisionHandler handles decision requests
type DecisionHandler struct {
	recommender Recommender
	logger      *zap.Logger
}

// NewDecisionHandler creates a new decision handler
func NewDecisionHandler(recommender Recommender, logger *zap.Logger) *DecisionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DecisionHandler{recommender: recommender, logger: logger}
}

// RegisterRoutes registers the decision route and its legacy alias on the root router.
// wrap, when non-nil, is applied to both (the rate limiter).
func (h *DecisionHandler) RegisterRoutes(r *mux.Router, wrap func(http.Handler) http.Handler) {
	var handler http.Handler = http.HandlerFunc(h.Decide)
	if wrap != nil {
		handler = wrap(handler)
	}
	r.Handle("/api/v1/decide", handler).Methods(http.MethodPost)
	r.Handle("/api/decide", handler).Methods(http.MethodPost)
}

// Decide handles POST /api/v1/decide
func (h *DecisionHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req models.DecisionContext
	if err := decodeJSONBody(r, &req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Request body exceeds the allowed size")
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if err := validation.ValidateDecisionContext(&req); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			respondJSONErrorWithDetails(w, http.StatusBadRequest, "Bad Request", "Validation failed", verr.Fields)
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	rec, err := h.recommender.Recommend(r.Context(), req)
	if err != nil {
		if errors.Is(err, decision.ErrNoTasks) {
			respondJSONErrorWithDetails(w, http.StatusBadRequest, "Bad Request", "Validation failed",
				map[string]string{"tasks": "must contain at least 1 item"})
			return
		}
		h.logger.Error("decision_failed",
			zap.String("error", logpkg.SanitizeError(err)),
			zap.String("request_id", request.RequestIDFromContext(r.Context())),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to compute recommendation")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// decodeJSONBody decodes exactly one JSON value from the request body
func decodeJSONBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
