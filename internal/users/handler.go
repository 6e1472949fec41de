package users

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"triage-backend/internal/shared/server/middleware"
	"triage-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
	// ResolveRole maps a signed-in user to "doctor" or "patient".
	ResolveRole func(ctx context.Context, userID, email string) (string, error)
}

func NewHandler(svc *Service, resolveRole func(ctx context.Context, userID, email string) (string, error)) *Handler {
	return &Handler{Svc: svc, ResolveRole: resolveRole}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if err == ErrNotFound {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	role := ""
	if h.ResolveRole != nil {
		if resolved, rerr := h.ResolveRole(c.Request.Context(), user.ID, user.Email); rerr == nil {
			role = resolved
		}
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"fullName":   user.FullName,
		"pictureUrl": user.PictureURL,
		"role":       role,
	})
}
