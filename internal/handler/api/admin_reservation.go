package api

import (
	"context"
	"errors"
	"net/http"

	"tandaro-api/internal/domain/reservation"
	reqdto "tandaro-api/internal/handler/dto/request"
	resdto "tandaro-api/internal/handler/dto/response"
	"tandaro-api/internal/handler/middleware"
	"tandaro-api/internal/usecase/commands"
	"tandaro-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminReservationHandler struct {
	reservationQueries queries.ReservationQueries
	userQueries        queries.UserQueries
	workflowCommands   commands.WorkflowCommands
	assignmentCommands commands.AssignmentCommands
}

func NewAdminReservationHandler(
	reservationQueries queries.ReservationQueries,
	userQueries queries.UserQueries,
	workflowCommands commands.WorkflowCommands,
	assignmentCommands commands.AssignmentCommands,
) *AdminReservationHandler {
	return &AdminReservationHandler{
		reservationQueries: reservationQueries,
		userQueries:        userQueries,
		workflowCommands:   workflowCommands,
		assignmentCommands: assignmentCommands,
	}
}

// @Summary List reservations
// @Description Dispatch board: all reservations, optionally filtered
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param vehicle_id query string false "Vehicle filter"
// @Param driver_id query string false "Driver filter"
// @Param from query string false "Start of window (RFC3339)"
// @Param to query string false "End of window (RFC3339)"
// @Success 200 {array} resdto.ReservationListItemResponse
// @Router /admin/reservations [get]
func (h *AdminReservationHandler) List(c *gin.Context) {
	filter := queries.AdminFilter{}

	if raw := c.Query("status"); raw != "" {
		if !reservation.Status(raw).IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid 'status' parameter",
			})
			return
		}
		filter.Status = raw
	}
	if raw := c.Query("vehicle_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid 'vehicle_id' parameter",
			})
			return
		}
		filter.VehicleID = &id
	}
	if raw := c.Query("driver_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid 'driver_id' parameter",
			})
			return
		}
		filter.DriverID = &id
	}
	if raw := c.Query("from"); raw != "" {
		t, err := parseTimeParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid 'from' parameter",
			})
			return
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseTimeParam(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid 'to' parameter",
			})
			return
		}
		filter.To = &t
	}

	items, err := h.reservationQueries.ListForAdmin(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationListItems(items))
}

// @Summary Get reservation
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 404 {object} map[string]string
// @Router /admin/reservations/{id} [get]
func (h *AdminReservationHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return
	}

	view, err := h.reservationQueries.GetByID(c.Request.Context(), userID, string(role), id)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Confirm reservation
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 "No Content"
// @Failure 409 {object} map[string]string
// @Router /admin/reservations/{id}/confirm [post]
func (h *AdminReservationHandler) Confirm(c *gin.Context) {
	h.transition(c, h.workflowCommands.Confirm)
}

// @Summary Start rental
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 "No Content"
// @Failure 409 {object} map[string]string
// @Router /admin/reservations/{id}/start [post]
func (h *AdminReservationHandler) Start(c *gin.Context) {
	h.transition(c, h.workflowCommands.Start)
}

// @Summary Complete rental
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 "No Content"
// @Failure 409 {object} map[string]string
// @Router /admin/reservations/{id}/complete [post]
func (h *AdminReservationHandler) Complete(c *gin.Context) {
	h.transition(c, h.workflowCommands.Complete)
}

// @Summary Cancel reservation
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 "No Content"
// @Failure 409 {object} map[string]string
// @Router /admin/reservations/{id}/cancel [post]
func (h *AdminReservationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.workflowCommands.Cancel)
}

// @Summary Set reservation amounts
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Param id path string true "Reservation ID"
// @Param request body reqdto.SetAmountsRequest true "Amounts"
// @Success 204 "No Content"
// @Failure 422 {object} map[string]string
// @Router /admin/reservations/{id}/amounts [put]
func (h *AdminReservationHandler) SetAmounts(c *gin.Context) {
	id, ok := h.reservationID(c)
	if !ok {
		return
	}

	var req reqdto.SetAmountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	err := h.workflowCommands.SetAmounts(c.Request.Context(), id, req.TotalPriceCents, req.PaidAmountCents)
	h.finishMutation(c, err)
}

// @Summary Record payment
// @Description Adds a partial payment; the payment status is derived, never set
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Param id path string true "Reservation ID"
// @Param request body reqdto.RecordPaymentRequest true "Payment"
// @Success 204 "No Content"
// @Failure 422 {object} map[string]string
// @Router /admin/reservations/{id}/payments [post]
func (h *AdminReservationHandler) RecordPayment(c *gin.Context) {
	id, ok := h.reservationID(c)
	if !ok {
		return
	}

	var req reqdto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	err := h.workflowCommands.RecordPayment(c.Request.Context(), id, req.AmountCents)
	h.finishMutation(c, err)
}

// @Summary Mark fully paid
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 "No Content"
// @Router /admin/reservations/{id}/mark-paid [post]
func (h *AdminReservationHandler) MarkFullyPaid(c *gin.Context) {
	h.transition(c, h.workflowCommands.MarkFullyPaid)
}

// @Summary Assign driver
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Param id path string true "Reservation ID"
// @Param request body reqdto.AssignDriverRequest true "Driver"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/reservations/{id}/assign [post]
func (h *AdminReservationHandler) Assign(c *gin.Context) {
	id, ok := h.reservationID(c)
	if !ok {
		return
	}

	var req reqdto.AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	err := h.assignmentCommands.Assign(c.Request.Context(), id, req.DriverID)
	h.finishMutation(c, err)
}

// @Summary Bulk assign driver
// @Description Assigns one driver to several reservations; failures are reported per reservation
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body reqdto.BulkAssignRequest true "Assignments"
// @Success 200 {object} resdto.BulkAssignResponse
// @Failure 404 {object} map[string]string
// @Router /admin/reservations/bulk-assign [post]
func (h *AdminReservationHandler) BulkAssign(c *gin.Context) {
	var req reqdto.BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.assignmentCommands.BulkAssign(c.Request.Context(), req.ReservationIDs, req.DriverID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrDriverNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Driver not found",
			})
		case errors.Is(err, commands.ErrNotADriver):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "User is not a driver",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	resp := resdto.BulkAssignResponse{
		Assigned: result.Assigned,
		Failed:   make([]resdto.BulkAssignFailure, len(result.Failed)),
	}
	if resp.Assigned == nil {
		resp.Assigned = []uuid.UUID{}
	}
	for i, f := range result.Failed {
		resp.Failed[i] = resdto.BulkAssignFailure{
			ReservationID: f.ReservationID,
			Reason:        f.Err.Error(),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Unassign driver
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Router /admin/reservations/{id}/unassign [post]
func (h *AdminReservationHandler) Unassign(c *gin.Context) {
	id, ok := h.reservationID(c)
	if !ok {
		return
	}

	err := h.assignmentCommands.Unassign(c.Request.Context(), id)
	h.finishMutation(c, err)
}

// @Summary List drivers
// @Description Active driver accounts available for assignment
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} resdto.DriverResponse
// @Router /admin/drivers [get]
func (h *AdminReservationHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.userQueries.ListDrivers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.FromDriverViews(drivers))
}

func (h *AdminReservationHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) error) {
	id, ok := h.reservationID(c)
	if !ok {
		return
	}
	h.finishMutation(c, fn(c.Request.Context(), id))
}

func (h *AdminReservationHandler) reservationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid reservation ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *AdminReservationHandler) finishMutation(c *gin.Context, err error) {
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrReservationNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Reservation not found",
			})
		case errors.Is(err, commands.ErrDriverNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Driver not found",
			})
		case errors.Is(err, commands.ErrNotADriver):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "User is not a driver",
			})
		case errors.Is(err, commands.ErrNotAssigned):
			c.JSON(http.StatusConflict, gin.H{
				"error": "No driver assigned",
			})
		case errors.Is(err, commands.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Invalid status transition",
			})
		case errors.Is(err, commands.ErrReservationClosed):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Reservation already closed",
			})
		case errors.Is(err, commands.ErrInvalidAmount):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Invalid payment amount",
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
