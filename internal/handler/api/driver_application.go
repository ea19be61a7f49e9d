package api

import (
	"errors"
	"net/http"

	reqdto "tandaro-api/internal/handler/dto/request"
	resdto "tandaro-api/internal/handler/dto/response"
	"tandaro-api/internal/handler/middleware"
	"tandaro-api/internal/usecase/commands"
	"tandaro-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DriverApplicationHandler struct {
	applicationCommands commands.DriverApplicationCommands
	applicationQueries  queries.DriverApplicationQueries
}

func NewDriverApplicationHandler(
	applicationCommands commands.DriverApplicationCommands,
	applicationQueries queries.DriverApplicationQueries,
) *DriverApplicationHandler {
	return &DriverApplicationHandler{
		applicationCommands: applicationCommands,
		applicationQueries:  applicationQueries,
	}
}

// @Summary Apply as driver
// @Description Public application form for prospective drivers
// @Tags driver-applications
// @Accept json
// @Produce json
// @Param request body reqdto.ApplyAsDriverRequest true "Application"
// @Success 201 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /driver-applications [post]
func (h *DriverApplicationHandler) Apply(c *gin.Context) {
	var req reqdto.ApplyAsDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	id, err := h.applicationCommands.Apply(c.Request.Context(), req.ToCommand())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrDomainValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Invalid application data",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id.String()})
}

// @Summary List applications
// @Tags driver-applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter (pending/approved/rejected)"
// @Success 200 {array} resdto.DriverApplicationResponse
// @Router /admin/driver-applications [get]
func (h *DriverApplicationHandler) List(c *gin.Context) {
	views, err := h.applicationQueries.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.FromDriverApplicationViews(views))
}

// @Summary Get application
// @Tags driver-applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} resdto.DriverApplicationResponse
// @Failure 404 {object} map[string]string
// @Router /admin/driver-applications/{id} [get]
func (h *DriverApplicationHandler) Get(c *gin.Context) {
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	view, err := h.applicationQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrApplicationNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Application not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromDriverApplicationView(view))
}

// @Summary Approve application
// @Description Approves the application and promotes the applicant to driver
// @Tags driver-applications
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/driver-applications/{id}/approve [post]
func (h *DriverApplicationHandler) Approve(c *gin.Context) {
	id, ok := h.applicationID(c)
	if !ok {
		return
	}
	adminID, found := middleware.GetUserID(c)
	if !found {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	h.finishDecision(c, h.applicationCommands.Approve(c.Request.Context(), id, adminID))
}

// @Summary Reject application
// @Tags driver-applications
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/driver-applications/{id}/reject [post]
func (h *DriverApplicationHandler) Reject(c *gin.Context) {
	id, ok := h.applicationID(c)
	if !ok {
		return
	}
	adminID, found := middleware.GetUserID(c)
	if !found {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	h.finishDecision(c, h.applicationCommands.Reject(c.Request.Context(), id, adminID))
}

// @Summary Delete application
// @Tags driver-applications
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Router /admin/driver-applications/{id} [delete]
func (h *DriverApplicationHandler) Delete(c *gin.Context) {
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	h.finishDecision(c, h.applicationCommands.Delete(c.Request.Context(), id))
}

func (h *DriverApplicationHandler) applicationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid application ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *DriverApplicationHandler) finishDecision(c *gin.Context, err error) {
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrApplicationNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Application not found",
			})
		case errors.Is(err, commands.ErrApplicationDecided):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Application already decided",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	c.Status(http.StatusNoContent)
}
