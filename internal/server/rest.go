package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/goevery/votechess/internal/broadcaster"
	"github.com/goevery/votechess/internal/handler"
	"github.com/goevery/votechess/internal/ierr"
	"github.com/goevery/votechess/internal/persistence"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxPublishBodyBytes = 64 << 10

type HealthResponse struct {
	Status string `json:"status"`
}

type ListMessagesResponse struct {
	Messages []persistence.Record `json:"messages"`
}

type RESTServer struct {
	logger *zap.Logger

	publishHandler handler.PublishHandlerInterface
	statsHandler   *handler.StatsHandler
	// journal is nil when message persistence is disabled.
	journal persistence.Engine
}

func NewRESTServer(
	logger *zap.Logger,
	publishHandler handler.PublishHandlerInterface,
	statsHandler *handler.StatsHandler,
	journal persistence.Engine,
) *RESTServer {
	return &RESTServer{
		logger,
		publishHandler,
		statsHandler,
		journal,
	}
}

func (s *RESTServer) Register(router *mux.Router) {
	router.HandleFunc("/publish", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPublishBodyBytes))
		if err != nil {
			writeError(s.logger, w, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid request body")))
			return
		}

		message, err := s.publishHandler.Handle(r.Context(), body)
		if err != nil {
			writeError(s.logger, w, err)
			return
		}

		s.logger.Info("message published over http", zap.Stringer("message", message))

		writeJSON(s.logger, w, http.StatusOK, message)
	}).Methods(http.MethodPost)

	router.HandleFunc("/connected-clients", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(s.logger, w, http.StatusOK, s.statsHandler.Handle())
	}).Methods(http.MethodGet)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(s.logger, w, http.StatusOK, HealthResponse{Status: "ok"})
	}).Methods(http.MethodGet)

	router.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		if s.journal == nil {
			writeError(s.logger, w, ierr.New(ierr.ErrorCodeUnavailable, errors.New("message journal is disabled")))
			return
		}

		request, err := parseListRequest(r)
		if err != nil {
			writeError(s.logger, w, err)
			return
		}

		records, err := s.journal.List(r.Context(), request)
		if err != nil {
			writeError(s.logger, w, err)
			return
		}

		if records == nil {
			records = []persistence.Record{}
		}

		writeJSON(s.logger, w, http.StatusOK, ListMessagesResponse{Messages: records})
	}).Methods(http.MethodGet)
}

func parseListRequest(r *http.Request) (persistence.ListRequest, error) {
	query := r.URL.Query()

	request := persistence.ListRequest{
		MessageType: broadcaster.MessageType(query.Get("type")),
		AfterId:     query.Get("after"),
	}

	if limit := query.Get("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 0 {
			return persistence.ListRequest{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid limit: "+limit))
		}

		request.Limit = parsed
	}

	return request, nil
}
