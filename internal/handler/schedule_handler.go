package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-scheduler-api/internal/dto"
	"github.com/noah-isme/course-scheduler-api/internal/scheduler"
	"github.com/noah-isme/course-scheduler-api/internal/service"
	"github.com/noah-isme/course-scheduler-api/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context) (*dto.GenerateScheduleResponse, error)
	GetSchedule(ctx context.Context) ([]scheduler.ScheduleEvent, error)
	Reset(ctx context.Context) (*dto.ResetScheduleResponse, error)
	Export(ctx context.Context, format dto.ExportFormat) (*dto.ExportFile, error)
}

// ScheduleHandler exposes timetable generation endpoints.
type ScheduleHandler struct {
	service scheduleGenerator
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc *service.ScheduleGeneratorService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Generate godoc
// @Summary Generate the active semester timetable
// @Description Replaces every course section of the active semester with a freshly generated timetable.
// @Description Per-course shortfalls are reported as warnings; configuration problems abort the run.
// @Tags Schedule
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /schedule/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	res, err := h.service.Generate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, res, nil, map[string]interface{}{
		"sessions":          len(res.Events),
		"warnings":          len(res.Warnings),
		"unscheduled_hours": res.UnscheduledHours,
	})
}

// Get godoc
// @Summary Get the active semester timetable
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	events, err := h.service.GetSchedule(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, events, map[string]interface{}{"count": len(events)})
}

// Reset godoc
// @Summary Delete the active semester timetable
// @Description Removes course sections and student enrollments of the active semester only.
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Security BearerAuth
// @Router /schedule/reset [delete]
func (h *ScheduleHandler) Reset(c *gin.Context) {
	res, err := h.service.Reset(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Export godoc
// @Summary Export the active semester timetable
// @Tags Schedule
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	format := dto.ExportFormat(c.DefaultQuery("format", string(dto.ExportCSV)))
	file, err := h.service.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}
