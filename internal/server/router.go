package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goevery/votechess/internal/ierr"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// NewRouter returns the router every endpoint is registered on, rooted at
// basePath.
func NewRouter(basePath string) *mux.Router {
	router := mux.NewRouter()

	basePath = strings.TrimRight(basePath, "/")
	if basePath == "" {
		return router
	}

	return router.PathPrefix(basePath).Subrouter()
}

// NewHandler wraps router with CORS handling so browser clients on the
// allowed origins can call the REST endpoints. No origins means any origin.
func NewHandler(router *mux.Router, origins []string) http.Handler {
	allowedOrigins := []string{"*"}
	if len(origins) > 0 {
		allowedOrigins = origins
	}

	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}

func statusOf(code ierr.ErrorCode) int {
	switch code {
	case ierr.ErrorCodeInvalidArgument:
		return http.StatusBadRequest
	case ierr.ErrorCodeNotFound:
		return http.StatusNotFound
	case ierr.ErrorCodeFailedPrecondition:
		return http.StatusConflict
	case ierr.ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// mapError keeps coded errors as they are and hides everything else behind
// an internal error.
func mapError(logger *zap.Logger, err error) ierr.Error {
	var handlerErr ierr.Error
	if errors.As(err, &handlerErr) {
		return handlerErr
	}

	logger.Error("error in http handler", zap.Error(err))

	return ierr.New(ierr.ErrorCodeInternal, errors.New("internal error"))
}

func writeError(logger *zap.Logger, w http.ResponseWriter, err error) {
	handlerErr := mapError(logger, err)

	writeJSON(logger, w, statusOf(handlerErr.Code), handlerErr)
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}
