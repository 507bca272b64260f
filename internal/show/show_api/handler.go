package show_api

import (
	"fmt"
	"net/http"

	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/show"
	"ms-cinema/internal/utils"
)

type Handler struct {
	ShowService *show.ShowService
	Logger      *logger.Logger
}

func NewHandler(showService *show.ShowService, log *logger.Logger) *Handler {
	return &Handler{ShowService: showService, Logger: log}
}

func (h *Handler) CreateShow(w http.ResponseWriter, r *http.Request) {
	var req models.ShowRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.WriteError(w, "Error creating show", err)
		return
	}

	created, err := h.ShowService.CreateShow(r.Context(), req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("CreateShow: %v", err))
		utils.WriteError(w, "Error creating show", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Show created", created)
}

func (h *Handler) UpdateShow(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "showId")
	if err != nil {
		utils.WriteError(w, "Error updating show", err)
		return
	}

	var req models.ShowRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.WriteError(w, "Error updating show", err)
		return
	}

	updated, err := h.ShowService.UpdateShow(r.Context(), id, req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("UpdateShow %d: %v", id, err))
		utils.WriteError(w, "Error updating show", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Show updated", updated)
}

func (h *Handler) GetShow(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "showId")
	if err != nil {
		utils.WriteError(w, "Error fetching show", err)
		return
	}

	found, err := h.ShowService.GetShow(r.Context(), id)
	if err != nil {
		utils.WriteError(w, "Error fetching show", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Show found", found)
}

func (h *Handler) ReleaseSeat(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "seatId")
	if err != nil {
		utils.WriteError(w, "Error releasing seat", err)
		return
	}

	seat, err := h.ShowService.ReleaseSeat(r.Context(), id)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("ReleaseSeat %d: %v", id, err))
		utils.WriteError(w, "Error releasing seat", err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("Seat %d released", id))
	utils.WriteSuccess(w, http.StatusOK, "Seat released", seat)
}
