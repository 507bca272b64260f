package event_api

import (
	"fmt"
	"net/http"

	"ms-cinema/internal/event"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/utils"
)

type Handler struct {
	EventService *event.EventService
	Logger       *logger.Logger
}

func NewHandler(eventService *event.EventService, log *logger.Logger) *Handler {
	return &Handler{EventService: eventService, Logger: log}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.WriteError(w, "Error creating event", err)
		return
	}

	created, err := h.EventService.CreateEvent(r.Context(), req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("CreateEvent: %v", err))
		utils.WriteError(w, "Error creating event", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Event created", created)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "eventId")
	if err != nil {
		utils.WriteError(w, "Error updating event", err)
		return
	}

	var req models.EventRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.WriteError(w, "Error updating event", err)
		return
	}

	updated, err := h.EventService.UpdateEvent(r.Context(), id, req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("UpdateEvent %d: %v", id, err))
		utils.WriteError(w, "Error updating event", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Event updated", updated)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "eventId")
	if err != nil {
		utils.WriteError(w, "Error fetching event", err)
		return
	}

	found, err := h.EventService.GetEvent(r.Context(), id)
	if err != nil {
		utils.WriteError(w, "Error fetching event", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Event found", found)
}
