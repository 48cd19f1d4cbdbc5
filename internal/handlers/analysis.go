package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/alimgiray/glscope/internal/export"
	"github.com/alimgiray/glscope/internal/middleware"
	"github.com/alimgiray/glscope/internal/models"
	"github.com/alimgiray/glscope/internal/repositories"
	"github.com/alimgiray/glscope/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AnalysisHandler struct {
	analyzer   services.Analyzer
	runService *services.RunService
	log        logrus.FieldLogger
}

func NewAnalysisHandler(analyzer services.Analyzer, runService *services.RunService, log logrus.FieldLogger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer:   analyzer,
		runService: runService,
		log:        log,
	}
}

// Analyze runs an analysis synchronously and returns the report
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var cfg models.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	report, err := h.analyzer.Analyze(c.Request.Context(), cfg)
	if err != nil {
		h.log.WithField("request_id", middleware.GetRequestID(c)).WithError(err).Warn("Analysis failed")
		fail(c, statusFor(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, report)
}

// CreateRun enqueues an analysis run
func (h *AnalysisHandler) CreateRun(c *gin.Context) {
	var cfg models.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	run, err := h.runService.CreateRun(cfg)
	if err != nil {
		fail(c, statusFor(err), err.Error())
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":     run.ID,
		"status": run.Status,
	})
}

// ListRuns lists all runs without reports
func (h *AnalysisHandler) ListRuns(c *gin.Context) {
	runs, err := h.runService.ListRuns()
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	c.JSON(http.StatusOK, runs)
}

// GetRun returns a run, with its report once completed
func (h *AnalysisHandler) GetRun(c *gin.Context) {
	run, err := h.runService.GetRun(c.Param("id"))
	if err != nil {
		fail(c, statusFor(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, run)
}

// ExportRun returns the report of a completed run as an XLSX workbook
func (h *AnalysisHandler) ExportRun(c *gin.Context) {
	run, err := h.runService.GetRun(c.Param("id"))
	if err != nil {
		fail(c, statusFor(err), err.Error())
		return
	}

	if !run.IsCompleted() || run.Report == nil {
		fail(c, http.StatusConflict, fmt.Sprintf("run %s is %s, report not available", run.ID, run.Status))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, run.Report); err != nil {
		h.log.WithField("run_id", run.ID).WithError(err).Error("Failed to export report")
		fail(c, http.StatusInternalServerError, "Failed to export report")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="glscope-%s.xlsx"`, run.ID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func statusFor(err error) int {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, repositories.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrRetriesExhausted):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}
