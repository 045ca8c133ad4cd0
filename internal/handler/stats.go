package handler

import "time"

type SessionCounter interface {
	Sessions() int
}

type HubCounter interface {
	Subscribers() int
	Published() uint64
}

type StatsResponse struct {
	ConnectedClients int       `json:"connected_clients"`
	Subscriptions    int       `json:"subscriptions"`
	Published        uint64    `json:"published"`
	Timestamp        time.Time `json:"timestamp"`
}

type StatsHandler struct {
	sessions SessionCounter
	hub      HubCounter
}

func NewStatsHandler(sessions SessionCounter, hub HubCounter) *StatsHandler {
	return &StatsHandler{
		sessions,
		hub,
	}
}

func (h *StatsHandler) Handle() StatsResponse {
	return StatsResponse{
		ConnectedClients: h.sessions.Sessions(),
		Subscriptions:    h.hub.Subscribers(),
		Published:        h.hub.Published(),
		Timestamp:        time.Now(),
	}
}
