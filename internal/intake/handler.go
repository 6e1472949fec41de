package intake

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"triage-backend/internal/inference"
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
	rg.POST("/intake/attachments", h.attach)
	rg.POST("/intake/keystrokes", h.keystrokes)
	rg.POST("/intake/submit", h.submit)
}

func (h *Handler) attach(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	contentType := file.Header.Get("Content-Type")

	src, err := file.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read file", nil)
		return
	}
	defer src.Close()

	userID := middleware.UserIDFromContext(c)
	url, category, err := h.Svc.AttachFile(c.Request.Context(), userID, file.Filename, contentType, src)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "validation_error", "only PNG images and WAV audio are accepted", nil)
		case errors.Is(err, ErrSlotTaken):
			respond.Error(c, http.StatusConflict, "conflict", "an attachment of this type is already added", gin.H{"category": category})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store attachment", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"publicUrl":    url,
		"mimeCategory": category,
	})
}

type keystrokeEvent struct {
	Type string `json:"type"`
	Key  string `json:"key"`
	At   int64  `json:"at"`
}

type keystrokesRequest struct {
	Events []keystrokeEvent `json:"events"`
}

// keystrokes appends a batch of key events to the draft. Events apply in the
// order received.
func (h *Handler) keystrokes(c *gin.Context) {
	var req keystrokesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	for _, ev := range req.Events {
		switch ev.Type {
		case "down":
			h.Svc.Drafts.RecordKeyDown(userID, ev.Key, ev.At)
		case "up":
			h.Svc.Drafts.RecordKeyUp(userID, ev.Key, ev.At)
		default:
			respond.Error(c, http.StatusBadRequest, "validation_error", "event type must be down or up", nil)
			return
		}
	}
	respond.JSON(c, http.StatusOK, gin.H{"accepted": len(req.Events)})
}

type submitRequest struct {
	Question string `json:"question"`
}

func (h *Handler) submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	outcome, err := h.Svc.Submit(c.Request.Context(), userID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyQuestion):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Please describe your symptoms before submitting", nil)
		case errors.Is(err, ErrSubmitInFlight):
			respond.Error(c, http.StatusConflict, "conflict", "A submission is already in progress", nil)
		case errors.Is(err, inference.ErrUnavailable):
			respond.Error(c, http.StatusBadGateway, "inference_unavailable", "Analysis service is unavailable, please try again", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to submit", nil)
		}
		return
	}

	if outcome.Result.Kind == inference.KindError {
		// Upstream reported an error in-band. Surface it inline; the client
		// stays on the form.
		respond.JSON(c, http.StatusOK, gin.H{
			"kind":  "error",
			"error": outcome.Result.Err,
		})
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"kind":         string(outcome.Result.Kind),
		"submissionId": outcome.SubmissionID,
		"response":     outcome.Result.Raw,
	})
}
