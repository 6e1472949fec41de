package doctors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"triage-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the routes any signed-in user may call.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/doctors", h.list)
}

// RegisterDoctorRoutes attaches the doctor-only routes. The caller wraps the
// group with Guard.
func (h *Handler) RegisterDoctorRoutes(rg *gin.RouterGroup) {
	rg.GET("/doctor/cases", h.cases)
	rg.POST("/doctor/cases/:id/review", h.review)
}

func (h *Handler) list(c *gin.Context) {
	docs, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list doctors", nil)
		return
	}
	if docs == nil {
		docs = []Doctor{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"doctors": docs})
}

func (h *Handler) cases(c *gin.Context) {
	doctorID := DoctorIDFromContext(c)
	cases, err := h.Svc.CasesFor(c.Request.Context(), doctorID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list cases", nil)
		return
	}
	if cases == nil {
		cases = []Case{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"cases": cases})
}

type reviewRequest struct {
	Note string `json:"note"`
}

func (h *Handler) review(c *gin.Context) {
	caseID := c.Param("id")
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid request body", nil)
		return
	}
	kase, err := h.Svc.Review(c.Request.Context(), caseID, DoctorIDFromContext(c), req.Note)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "case not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update case", nil)
		return
	}
	respond.JSON(c, http.StatusOK, kase)
}
