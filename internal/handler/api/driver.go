package api

import (
	"errors"
	"log/slog"
	"net/http"

	reqdto "tandaro-api/internal/handler/dto/request"
	resdto "tandaro-api/internal/handler/dto/response"
	"tandaro-api/internal/handler/httperr"
	"tandaro-api/internal/handler/middleware"
	"tandaro-api/internal/notify"
	"tandaro-api/internal/pkg/clock"
	"tandaro-api/internal/usecase/commands"
	"tandaro-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DriverHandler struct {
	jobQueries       queries.DriverJobQueries
	workflowCommands commands.WorkflowCommands
	hub              *notify.Hub
	clock            clock.Clock
}

func NewDriverHandler(
	jobQueries queries.DriverJobQueries,
	workflowCommands commands.WorkflowCommands,
	hub *notify.Hub,
	clk clock.Clock,
) *DriverHandler {
	return &DriverHandler{
		jobQueries:       jobQueries,
		workflowCommands: workflowCommands,
		hub:              hub,
		clock:            clk,
	}
}

// @Summary List assigned jobs
// @Description Jobs bucketed into today, upcoming and completed
// @Tags driver
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.JobBucketsResponse
// @Router /driver/jobs [get]
func (h *DriverHandler) ListJobs(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	buckets, err := h.jobQueries.ListJobs(c.Request.Context(), driverID, h.clock.Now())
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromJobBuckets(buckets))
}

// @Summary Start a job
// @Description Marks an assigned rental as in progress
// @Tags driver
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /driver/jobs/{id}/start [post]
func (h *DriverHandler) StartJob(c *gin.Context) {
	driverID, reservationID, ok := h.jobParams(c)
	if !ok {
		return
	}

	err := h.workflowCommands.StartByDriver(c.Request.Context(), reservationID, driverID)
	h.finishJobMutation(c, err)
}

// @Summary Complete a job
// @Description Finishes an assigned rental, attaching proof-of-delivery artifacts
// @Tags driver
// @Security BearerAuth
// @Accept json
// @Param id path string true "Reservation ID"
// @Param request body reqdto.CompleteJobRequest false "Completion report"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /driver/jobs/{id}/complete [post]
func (h *DriverHandler) CompleteJob(c *gin.Context) {
	driverID, reservationID, ok := h.jobParams(c)
	if !ok {
		return
	}

	var req reqdto.CompleteJobRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request format",
			})
			return
		}
	}

	err := h.workflowCommands.CompleteByDriver(c.Request.Context(), reservationID, driverID, req.ToCommand())
	h.finishJobMutation(c, err)
}

// @Summary Driver event stream
// @Description Upgrades to a websocket pushing assignment events
// @Tags driver
// @Security BearerAuth
// @Success 101 "Switching Protocols"
// @Router /driver/ws [get]
func (h *DriverHandler) Events(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	if err := h.hub.Serve(c.Writer, c.Request, driverID); err != nil {
		// The upgrader already wrote its handshake error response.
		slog.Warn("websocket upgrade failed", "driver_id", driverID, "error", err)
	}
}

func (h *DriverHandler) jobParams(c *gin.Context) (driverID, reservationID uuid.UUID, ok bool) {
	driverID, found := middleware.GetUserID(c)
	if !found {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return uuid.Nil, uuid.Nil, false
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return uuid.Nil, uuid.Nil, false
	}

	return driverID, reservationID, true
}

func (h *DriverHandler) finishJobMutation(c *gin.Context, err error) {
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrReservationNotFound),
			errors.Is(err, commands.ErrNotAssignedDriver):
			// A job that is not yours looks like no job at all.
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
		case errors.Is(err, commands.ErrInvalidTransition),
			errors.Is(err, commands.ErrReservationClosed):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Job is not in a state for this action",
			})
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}
