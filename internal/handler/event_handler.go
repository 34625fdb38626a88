package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sankha1545/Bhakasamilani/internal/logger"
	"github.com/sankha1545/Bhakasamilani/internal/logic"
)

type EventHandler struct {
	eventLogic *logic.TempleEventLogic
}

func NewEventHandler(eventLogic *logic.TempleEventLogic) *EventHandler {
	return &EventHandler{eventLogic: eventLogic}
}

// GetEvents 即将举行的活动
func (h *EventHandler) GetEvents(c *gin.Context) {
	events, err := h.eventLogic.Upcoming()
	if err != nil {
		logger.Error("Failed to list events: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Unable to load events")
		return
	}

	resp := make([]EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateEvent 创建活动
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	event, err := h.eventLogic.Create(req.Title, req.Description, req.DateTime)
	if err != nil {
		respondError(c, err, "Unable to save event")
		return
	}

	c.JSON(http.StatusCreated, toEventResponse(*event))
}
