package api

import (
	"errors"
	"net/http"
	"time"

	reqdto "tandaro-api/internal/handler/dto/request"
	resdto "tandaro-api/internal/handler/dto/response"
	"tandaro-api/internal/pkg/clock"
	"tandaro-api/internal/usecase/commands"
	"tandaro-api/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// defaultAvailabilityWindow bounds the calendar query when the client
// omits the range.
const defaultAvailabilityWindow = 7 * 24 * time.Hour

type VehicleHandler struct {
	vehicleQueries      queries.VehicleQueries
	availabilityQueries queries.AvailabilityQueries
	vehicleCommands     commands.VehicleCommands
	clock               clock.Clock
}

func NewVehicleHandler(
	vehicleQueries queries.VehicleQueries,
	availabilityQueries queries.AvailabilityQueries,
	vehicleCommands commands.VehicleCommands,
	clk clock.Clock,
) *VehicleHandler {
	return &VehicleHandler{
		vehicleQueries:      vehicleQueries,
		availabilityQueries: availabilityQueries,
		vehicleCommands:     vehicleCommands,
		clock:               clk,
	}
}

// @Summary List vehicles
// @Description Public catalog of bookable vehicles
// @Tags vehicles
// @Produce json
// @Success 200 {array} resdto.VehicleResponse
// @Router /vehicles [get]
func (h *VehicleHandler) List(c *gin.Context) {
	views, err := h.vehicleQueries.List(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.FromVehicleViews(views))
}

// @Summary List full fleet
// @Description Admin view including deactivated vehicles
// @Tags vehicles
// @Security BearerAuth
// @Produce json
// @Success 200 {array} resdto.VehicleResponse
// @Router /admin/vehicles [get]
func (h *VehicleHandler) AdminList(c *gin.Context) {
	views, err := h.vehicleQueries.List(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, resdto.FromVehicleViews(views))
}

// @Summary Get vehicle
// @Tags vehicles
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} resdto.VehicleResponse
// @Failure 404 {object} map[string]string
// @Router /vehicles/{id} [get]
func (h *VehicleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid vehicle ID format",
		})
		return
	}

	view, err := h.vehicleQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrVehicleNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Vehicle not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromVehicleView(view))
}

// @Summary Vehicle availability
// @Description Busy intervals of a vehicle in the requested window
// @Tags vehicles
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {array} resdto.BlockedSlotResponse
// @Failure 404 {object} map[string]string
// @Router /vehicles/{id}/availability [get]
func (h *VehicleHandler) Availability(c *gin.Context) {
	id, from, to, ok := h.availabilityParams(c)
	if !ok {
		return
	}

	slots, err := h.availabilityQueries.BlockedSlots(c.Request.Context(), id, from, to)
	if err != nil {
		h.availabilityError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromBlockedSlots(slots))
}

// @Summary Vehicle booking calendar
// @Description Hour grid between opening and closing hours with per-cell availability
// @Tags vehicles
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {array} resdto.DayAvailabilityResponse
// @Failure 404 {object} map[string]string
// @Router /vehicles/{id}/calendar [get]
func (h *VehicleHandler) Calendar(c *gin.Context) {
	id, from, to, ok := h.availabilityParams(c)
	if !ok {
		return
	}

	days, err := h.availabilityQueries.Calendar(c.Request.Context(), id, from, to)
	if err != nil {
		h.availabilityError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromCalendar(days))
}

// @Summary Create vehicle
// @Tags vehicles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body reqdto.CreateVehicleRequest true "Vehicle"
// @Success 201 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /admin/vehicles [post]
func (h *VehicleHandler) Create(c *gin.Context) {
	var req reqdto.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	id, err := h.vehicleCommands.Create(c.Request.Context(), req.ToCommand())
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrDomainValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Invalid vehicle data",
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

// @Summary Update vehicle
// @Tags vehicles
// @Security BearerAuth
// @Accept json
// @Param id path string true "Vehicle ID"
// @Param request body reqdto.UpdateVehicleRequest true "Partial update"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Router /admin/vehicles/{id} [patch]
func (h *VehicleHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid vehicle ID format",
		})
		return
	}

	var req reqdto.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.vehicleCommands.Update(c.Request.Context(), id, req.ToCommand()); err != nil {
		switch {
		case errors.Is(err, commands.ErrVehicleNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Vehicle not found",
			})
		case errors.Is(err, commands.ErrDomainValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Invalid vehicle data",
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

// @Summary Delete vehicle
// @Description Removes a vehicle that was never booked; vehicles with history must be deactivated instead
// @Tags vehicles
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/vehicles/{id} [delete]
func (h *VehicleHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid vehicle ID format",
		})
		return
	}

	if err := h.vehicleCommands.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, commands.ErrVehicleNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Vehicle not found",
			})
		case errors.Is(err, commands.ErrVehicleInUse):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Vehicle has reservations; deactivate it instead",
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

func (h *VehicleHandler) availabilityParams(c *gin.Context) (uuid.UUID, time.Time, time.Time, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid vehicle ID format",
		})
		return uuid.Nil, time.Time{}, time.Time{}, false
	}

	from := h.clock.Now()
	if raw := c.Query("from"); raw != "" {
		parsed, parseErr := parseTimeParam(raw)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid 'from' parameter",
			})
			return uuid.Nil, time.Time{}, time.Time{}, false
		}
		from = parsed
	}

	to := from.Add(defaultAvailabilityWindow)
	if raw := c.Query("to"); raw != "" {
		parsed, parseErr := parseTimeParam(raw)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid 'to' parameter",
			})
			return uuid.Nil, time.Time{}, time.Time{}, false
		}
		to = parsed
	}

	if !to.After(from) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "'to' must be after 'from'",
		})
		return uuid.Nil, time.Time{}, time.Time{}, false
	}

	return id, from, to, true
}

func (h *VehicleHandler) availabilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queries.ErrVehicleNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Vehicle not found",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func parseTimeParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
