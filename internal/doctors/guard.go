package doctors

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"triage-backend/internal/cache"
	"triage-backend/internal/shared/server/middleware"
	"triage-backend/internal/shared/server/respond"
)

const doctorIDKey = "doctorId"

// Guard restricts a route group to registered doctors. Non-doctors get a 403
// that tells the client where to send them instead.
func Guard(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		email := middleware.UserEmailFromContext(c)
		if userID == "" || email == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Sign in required", gin.H{"redirect": "/signin"})
			return
		}

		role, err := svc.ResolveRole(c.Request.Context(), userID, email)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to resolve role", nil)
			return
		}
		if role != cache.RoleDoctor {
			respond.Error(c, http.StatusForbidden, "forbidden", "Doctor access required", gin.H{"redirect": "/dashboard"})
			return
		}

		doc, err := svc.GetByEmail(c.Request.Context(), email)
		if err != nil {
			respond.Error(c, http.StatusForbidden, "forbidden", "Doctor access required", gin.H{"redirect": "/dashboard"})
			return
		}
		c.Set(doctorIDKey, doc.ID)
		c.Next()
	}
}

// DoctorIDFromContext returns the doctor id set by Guard.
func DoctorIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(doctorIDKey); ok {
		if id, ok2 := v.(string); ok2 {
			return id
		}
	}
	return ""
}
