package purchase_api

import (
	"fmt"
	"net/http"

	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/purchase"
	"ms-cinema/internal/utils"
)

type Handler struct {
	PurchaseService *purchase.PurchaseService
	Sweeper         *purchase.Sweeper
	Logger          *logger.Logger
}

func NewHandler(purchaseService *purchase.PurchaseService, sweeper *purchase.Sweeper, log *logger.Logger) *Handler {
	return &Handler{PurchaseService: purchaseService, Sweeper: sweeper, Logger: log}
}

func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req models.PurchaseRequest
	if err := utils.DecodeJSON(r.Body, &req); err != nil {
		utils.WriteError(w, "Error creating purchase", err)
		return
	}
	if req.User != nil {
		if err := h.verifyOwnership(r.Context(), req.User); err != nil {
			utils.WriteError(w, "Error creating purchase", err)
			return
		}
	}

	created, err := h.PurchaseService.CreatePurchase(r.Context(), req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("CreatePurchase: %v", err))
		utils.WriteError(w, "Error creating purchase", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Purchase created", created)
}

func (h *Handler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "purchaseId")
	if err != nil {
		utils.WriteError(w, "Error fetching purchase", err)
		return
	}

	buy, err := h.PurchaseService.GetPurchase(r.Context(), id)
	if err != nil {
		utils.WriteError(w, "Error fetching purchase", err)
		return
	}
	if err := h.verifyOwnership(r.Context(), buy.UserID); err != nil {
		utils.WriteError(w, "Error fetching purchase", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Purchase found", buy)
}

func (h *Handler) ListPurchasesByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.IDParam(r, "userId")
	if err != nil {
		utils.WriteError(w, "Error listing purchases", err)
		return
	}
	if err := h.verifyOwnership(r.Context(), &userID); err != nil {
		utils.WriteError(w, "Error listing purchases", err)
		return
	}

	buys, err := h.PurchaseService.ListPurchasesByUser(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, "Error listing purchases", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Purchases found", buys)
}

func (h *Handler) CancelPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := utils.IDParam(r, "purchaseId")
	if err != nil {
		utils.WriteError(w, "Error cancelling purchase", err)
		return
	}

	buy, err := h.PurchaseService.GetPurchase(r.Context(), id)
	if err != nil {
		utils.WriteError(w, "Error cancelling purchase", err)
		return
	}
	if err := h.verifyOwnership(r.Context(), buy.UserID); err != nil {
		utils.WriteError(w, "Error cancelling purchase", err)
		return
	}

	cancelled, err := h.PurchaseService.CancelPurchase(r.Context(), id)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("CancelPurchase %d: %v", id, err))
		utils.WriteError(w, "Error cancelling purchase", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Purchase cancelled", cancelled)
}

// Sweep runs the expiration sweep on demand.
func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	n, err := h.Sweeper.SweepExpired(r.Context(), h.PurchaseService.Clock())
	if err != nil {
		h.Logger.Error("SWEEPER", fmt.Sprintf("Manual sweep failed: %v", err))
		utils.WriteError(w, "Error sweeping purchases", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Sweep complete", map[string]int64{"expired": n})
}
