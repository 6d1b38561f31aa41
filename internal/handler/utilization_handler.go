package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-scheduler-api/internal/models"
	"github.com/noah-isme/course-scheduler-api/internal/service"
	"github.com/noah-isme/course-scheduler-api/pkg/response"
)

type utilizationCalculator interface {
	Calculate(ctx context.Context) (*models.Utilization, error)
}

// UtilizationHandler serves the resource utilization report.
type UtilizationHandler struct {
	service utilizationCalculator
}

func NewUtilizationHandler(svc *service.UtilizationService) *UtilizationHandler {
	return &UtilizationHandler{service: svc}
}

// Get godoc
// @Summary Teacher, room, day and time-slot utilization of the active timetable
// @Tags Utilization
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /utilization [get]
func (h *UtilizationHandler) Get(c *gin.Context) {
	report, err := h.service.Calculate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
