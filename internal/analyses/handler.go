package analyses

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"triage-backend/internal/doctors"
	"triage-backend/internal/inference"
	"triage-backend/internal/report"
	"triage-backend/internal/shared/server/middleware"
	"triage-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.save)
	rg.GET("/analyses", h.history)
	rg.GET("/analyses/:id", h.get)
	rg.GET("/analyses/:id/report", h.report)
	rg.GET("/analyses/:id/export", h.export)
	rg.DELETE("/analyses/:id", h.delete)
	rg.POST("/analyses/:id/route", h.route)
}

// saveRequest is a tagged union. kind "fresh" carries a new inference
// response to persist; kind "historical" names an already saved record to
// reopen without writing anything.
type saveRequest struct {
	Kind           string          `json:"kind"`
	Response       json.RawMessage `json:"response"`
	IdempotencyKey string          `json:"idempotencyKey"`
	RecordID       string          `json:"recordId"`
}

func (h *Handler) save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)

	switch req.Kind {
	case "fresh":
		if len(req.Response) == 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "response is required", nil)
			return
		}
		result := inference.ParseResult(req.Response)
		rec, created, err := h.Svc.PersistOnce(c.Request.Context(), userID, result, req.IdempotencyKey)
		if err != nil {
			if errors.Is(err, errNotPersistable) {
				respond.Error(c, http.StatusBadRequest, "validation_error", "error results cannot be saved", nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save analysis", nil)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		respond.JSON(c, status, gin.H{"record": rec, "created": created})
	case "historical":
		if req.RecordID == "" {
			respond.Error(c, http.StatusBadRequest, "validation_error", "recordId is required", nil)
			return
		}
		rec, err := h.Svc.Get(c.Request.Context(), userID, req.RecordID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load analysis", nil)
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{"record": rec, "created": false})
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", "kind must be fresh or historical", nil)
	}
}

func (h *Handler) history(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	entries, err := h.Svc.History(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load history", nil)
		return
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	respond.JSON(c, http.StatusOK, gin.H{"analyses": entries})
}

func (h *Handler) get(c *gin.Context) {
	rec, ok := h.load(c)
	if !ok {
		return
	}
	respond.JSON(c, http.StatusOK, rec)
}

func (h *Handler) report(c *gin.Context) {
	rec, ok := h.load(c)
	if !ok {
		return
	}
	result := inference.ParseStored(rec.Data)
	respond.JSON(c, http.StatusOK, gin.H{
		"id":     rec.ID,
		"name":   rec.Name,
		"date":   rec.CreatedAt,
		"report": report.Build(result),
	})
}

// export streams the stored payload byte for byte so a re-import matches the
// original response exactly.
func (h *Handler) export(c *gin.Context) {
	rec, ok := h.load(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+ExportName(rec)+`"`)
	c.Data(http.StatusOK, "application/json", []byte(rec.Data))
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	err := h.Svc.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete analysis", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

type routeRequest struct {
	DoctorID string `json:"doctorId"`
}

func (h *Handler) route(c *gin.Context) {
	var req routeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DoctorID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "doctorId is required", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	kase, err := h.Svc.RouteToDoctor(c.Request.Context(), userID, c.Param("id"), req.DoctorID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		case errors.Is(err, doctors.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "doctor not found", nil)
		case errors.Is(err, doctors.ErrAlreadyRouted):
			respond.Error(c, http.StatusConflict, "conflict", "analysis already routed to a doctor", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to route analysis", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, kase)
}

func (h *Handler) load(c *gin.Context) (Record, bool) {
	userID := middleware.UserIDFromContext(c)
	rec, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
			return Record{}, false
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load analysis", nil)
		return Record{}, false
	}
	return rec, true
}
