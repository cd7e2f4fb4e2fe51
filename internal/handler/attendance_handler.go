package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ColegioIDS/ids-attendance-api/internal/dto"
	"github.com/ColegioIDS/ids-attendance-api/internal/service"
	appErrors "github.com/ColegioIDS/ids-attendance-api/pkg/errors"
	"github.com/ColegioIDS/ids-attendance-api/pkg/response"
)

// AttendanceHandler wires the attendance endpoints: bulk registration,
// report lookup, background recalculation and section sheet export.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	reports    *service.ReportService
	exports    *service.ExportService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(attendance *service.AttendanceService, reports *service.ReportService, exports *service.ExportService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, reports: reports, exports: exports}
}

// RegisterBulk godoc
// @Summary Register attendance for a whole section
// @Description Validate and persist one attendance record per eligible student and scheduled class, then recalculate reports, all atomically
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BulkAttendanceRequest true "Bulk attendance payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/bulk [post]
func (h *AttendanceHandler) RegisterBulk(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.BulkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	submission := service.BulkSubmission{
		UserID:              claims.UserID,
		RoleID:              claims.RoleID,
		Date:                req.Date,
		GradeID:             req.GradeID,
		SectionID:           req.SectionID,
		AttendanceStatusID:  req.AttendanceStatusID,
		ArrivalTime:         req.ArrivalTime,
		DepartureTime:       req.DepartureTime,
		Notes:               req.Notes,
		CourseAssignmentIDs: req.CourseAssignmentIDs,
	}

	result, err := h.attendance.RegisterBulk(c.Request.Context(), submission)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetReport godoc
// @Summary Get the attendance report for one enrollment
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param enrollmentId path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/reports/{enrollmentId} [get]
func (h *AttendanceHandler) GetReport(c *gin.Context) {
	enrollmentID := c.Param("enrollmentId")
	if enrollmentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "enrollmentId is required"))
		return
	}

	report, err := h.reports.GetReport(c.Request.Context(), enrollmentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil)
}

// Recalculate godoc
// @Summary Schedule a section-wide report recalculation
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.RecalcRequest true "Recalculation payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/reports/recalculate [post]
func (h *AttendanceHandler) Recalculate(c *gin.Context) {
	var req dto.RecalcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid recalculation payload"))
		return
	}

	jobID, err := h.exports.EnqueueSectionRecalc(req.SectionID, req.CycleID, req.BimesterID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusAccepted, dto.RecalcResponse{JobID: jobID}, nil)
}

// ExportSection godoc
// @Summary Export a section's attendance sheet for one date
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /attendance/sections/{id}/export [get]
func (h *AttendanceHandler) ExportSection(c *gin.Context) {
	sectionID := c.Param("id")
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD"))
		return
	}
	format := c.DefaultQuery("format", "csv")

	data, contentType, err := h.exports.ExportSectionSheet(c.Request.Context(), sectionID, date, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s-%s.%s", sectionID, date.Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
