package ticket_api

import (
	"errors"
	"fmt"
	"net/http"

	"ms-cinema/internal/auth"
	"ms-cinema/internal/errs"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/tickets"
	qr "ms-cinema/internal/tickets/qr_generator"
	"ms-cinema/internal/utils"
	"ms-cinema/internal/validation"
)

type Handler struct {
	TicketService *tickets.TicketService
	Logger        *logger.Logger
}

func NewHandler(ticketService *tickets.TicketService, log *logger.Logger) *Handler {
	return &Handler{TicketService: ticketService, Logger: log}
}

// IssueQR answers with the QR image for a purchase. Clients may only ask
// for their own purchases.
func (h *Handler) IssueQR(w http.ResponseWriter, r *http.Request) {
	var req models.IssueQRRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.WriteError(w, "Error generating QR", err)
		return
	}
	if err := validation.Struct(req); err != nil {
		utils.WriteError(w, "Error generating QR", err)
		return
	}

	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		utils.WriteError(w, "Error generating QR", auth.ErrMissingToken)
		return
	}
	if !claims.HasRole(models.RoleAdmin, models.RoleEmployee) {
		buy, err := h.TicketService.Purchases.GetPurchase(r.Context(), req.PurchaseID)
		if err != nil {
			utils.WriteError(w, "Error generating QR", err)
			return
		}
		if buy.UserID == nil || !claims.CanAccessUser(*buy.UserID) {
			utils.WriteError(w, "Error generating QR", errs.Forbidden("purchase %d belongs to another user", req.PurchaseID))
			return
		}
	}

	resp, err := h.TicketService.IssueQR(r.Context(), req.PurchaseID)
	if err != nil {
		h.Logger.Warn("QR", fmt.Sprintf("IssueQR %d: %v", req.PurchaseID, err))
		utils.WriteError(w, "Error generating QR", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

// ValidateQR checks a scanned token. A bad or expired token is a client
// error rather than an authentication failure.
func (h *Handler) ValidateQR(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateQRRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.WriteError(w, "Error validating QR", err)
		return
	}
	if err := validation.Struct(req); err != nil {
		utils.WriteError(w, "Error validating QR", err)
		return
	}

	buy, err := h.TicketService.ValidateQR(r.Context(), req.Token)
	if errors.Is(err, qr.ErrInvalidToken) {
		utils.WriteErrorStatus(w, http.StatusBadRequest, "Error validating QR", err)
		return
	}
	if err != nil {
		utils.WriteError(w, "Error validating QR", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "QR is valid", buy)
}

func (h *Handler) GetShowOccupancy(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "showId")
	if err != nil {
		utils.WriteError(w, "Error counting tickets", err)
		return
	}

	occupancy, err := h.TicketService.GetShowOccupancy(r.Context(), id)
	if err != nil {
		utils.WriteError(w, "Error counting tickets", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Show occupancy", occupancy)
}
