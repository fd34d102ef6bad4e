package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-coverage-api/internal/dto"
	internalmiddleware "github.com/noah-isme/sma-coverage-api/internal/middleware"
	"github.com/noah-isme/sma-coverage-api/internal/models"
	"github.com/noah-isme/sma-coverage-api/internal/service"
	appErrors "github.com/noah-isme/sma-coverage-api/pkg/errors"
	"github.com/noah-isme/sma-coverage-api/pkg/response"
)

type coverageService interface {
	Run(ctx context.Context, req dto.RunCoverageRequest) (*dto.CoverageRunResponse, error)
	Get(ctx context.Context, date string) (*dto.CoverageSheet, bool, error)
	Export(ctx context.Context, date, format string) (*dto.ExportFile, error)
	SetOverride(ctx context.Context, req dto.OverrideRequest) (*dto.OverrideResponse, error)
	ListRuns(ctx context.Context, query dto.ListCoverageRunsQuery) ([]models.CoverageRun, *models.Pagination, error)
}

// CoverageHandler exposes the coverage engine over HTTP.
type CoverageHandler struct {
	service coverageService
}

// NewCoverageHandler constructs the handler.
func NewCoverageHandler(svc *service.CoverageService) *CoverageHandler {
	return &CoverageHandler{service: svc}
}

// Register mounts the coverage routes on the group.
func (h *CoverageHandler) Register(group *gin.RouterGroup) {
	coverage := group.Group("/coverage")
	coverage.POST("/runs", h.Run)
	coverage.GET("/runs", h.ListRuns)
	coverage.PUT("/overrides", h.SetOverride)
	coverage.GET("/:date", h.Get)
	coverage.GET("/:date/export", h.Export)
}

// Run godoc
// @Summary Run the coverage engine for a date
// @Description Assigns covering staff to every absent period. Set dry_run to preview without saving.
// @Tags Coverage
// @Accept json
// @Produce json
// @Param payload body dto.RunCoverageRequest true "Run payload"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope "dry run"
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /coverage/runs [post]
func (h *CoverageHandler) Run(c *gin.Context) {
	var req dto.RunCoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid coverage run payload"))
		return
	}
	result, err := h.service.Run(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.DryRun {
		response.JSON(c, http.StatusOK, result, nil, internalmiddleware.ExtractMeta(c))
		return
	}
	response.Created(c, result, internalmiddleware.ExtractMeta(c))
}

// ListRuns godoc
// @Summary List coverage run history
// @Tags Coverage
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /coverage/runs [get]
func (h *CoverageHandler) ListRuns(c *gin.Context) {
	var query dto.ListCoverageRunsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	runs, pagination, err := h.service.ListRuns(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, pagination)
}

// Get godoc
// @Summary Get the coverage sheet for a date
// @Tags Coverage
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /coverage/{date} [get]
func (h *CoverageHandler) Get(c *gin.Context) {
	sheet, hit, err := h.service.Get(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	internalmiddleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, sheet, nil, internalmiddleware.ExtractMeta(c))
}

// Export godoc
// @Summary Download the coverage sheet
// @Tags Coverage
// @Produce text/csv
// @Produce application/pdf
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /coverage/{date}/export [get]
func (h *CoverageHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), c.Param("date"), c.DefaultQuery("format", service.ExportFormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// SetOverride godoc
// @Summary Pin or clear a manual coverage override
// @Description An empty candidate_id clears the pin. Takes effect on the next run.
// @Tags Coverage
// @Accept json
// @Produce json
// @Param payload body dto.OverrideRequest true "Override payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /coverage/overrides [put]
func (h *CoverageHandler) SetOverride(c *gin.Context) {
	var req dto.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid override payload"))
		return
	}
	result, err := h.service.SetOverride(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
