package handler

import (
	"net/http"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/api/response"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/matchmaking"
)

// QueueHandler exposes the matchmaking queue for staff supervision
type QueueHandler struct {
	matchmaking matchmaking.ControllerInterface
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(matchmakingController matchmaking.ControllerInterface) *QueueHandler {
	return &QueueHandler{
		matchmaking: matchmakingController,
	}
}

// Status handles GET /api/v1/queue
func (h *QueueHandler) Status(w http.ResponseWriter, r *http.Request) {
	count, err := h.matchmaking.WaitingCount(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.OK(w, response.QueueStatus{WaitingCount: count})
}
