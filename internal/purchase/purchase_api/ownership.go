package purchase_api

import (
	"context"
	"fmt"

	"ms-cinema/internal/auth"
	"ms-cinema/internal/errs"
	"ms-cinema/internal/models"
)

// verifyOwnership lets staff through and limits clients to their own
// purchases. A purchase detached from a deleted user belongs to nobody.
func (h *Handler) verifyOwnership(ctx context.Context, ownerID *int64) error {
	claims, ok := auth.ClaimsFrom(ctx)
	if !ok {
		return auth.ErrMissingToken
	}
	if claims.HasRole(models.RoleAdmin, models.RoleEmployee) {
		return nil
	}
	if ownerID == nil || !claims.CanAccessUser(*ownerID) {
		h.Logger.LogSecurity("OWNERSHIP_DENIED", fmt.Sprintf("user %d", claims.UserID))
		return errs.Forbidden("purchase belongs to another user")
	}
	return nil
}
