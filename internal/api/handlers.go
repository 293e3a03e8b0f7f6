package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/epiverse/bcrat/internal/domain"
	"github.com/epiverse/bcrat/internal/health"
	"github.com/epiverse/bcrat/internal/tables"
)

// riskRequest is the body of POST /api/v1/risk.
type riskRequest struct {
	Profile domain.RiskFactorProfile   `json:"profile"`
	Options *domain.CalculationOptions `json:"options,omitempty"`
}

// handleHealth runs the readiness checks and maps overall health to the
// status code.
func (s *Server) handleHealth(c *gin.Context) {
	status := s.checker.Run(c.Request.Context())

	code := http.StatusOK
	if status.Overall == health.StateUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// handleCalculateRisk runs one assessment. Invalid profiles still return 200
// with the failure detail inside the result; only malformed requests get 4xx.
func (s *Server) handleCalculateRisk(c *gin.Context) {
	var req riskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.CodeInvalidInput, "malformed request body", err.Error(), c.GetString("correlation_id")))
		return
	}

	opts := domain.DefaultCalculationOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	result := s.calculator.CalculateRisk(c.Request.Context(), &req.Profile, opts)
	c.JSON(http.StatusOK, result)
}

// handleCalculateBatch runs up to MaxBatchSize assessments in one call.
func (s *Server) handleCalculateBatch(c *gin.Context) {
	var req domain.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.CodeInvalidInput, "malformed request body", err.Error(), c.GetString("correlation_id")))
		return
	}

	maxBatch := s.configManager.GetServerConfig().MaxBatchSize
	if len(req.Profiles) == 0 {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.CodeInvalidInput, "batch contains no profiles", "", c.GetString("correlation_id")))
		return
	}
	if maxBatch > 0 && len(req.Profiles) > maxBatch {
		c.JSON(http.StatusRequestEntityTooLarge, domain.NewAPIError(
			domain.CodeInvalidInput,
			"batch exceeds maximum size",
			"maximum is "+strconv.Itoa(maxBatch)+" profiles",
			c.GetString("correlation_id")))
		return
	}

	opts := domain.DefaultCalculationOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	results := s.calculator.CalculateBatchRisk(c.Request.Context(), req.Profiles, opts)
	c.JSON(http.StatusOK, gin.H{
		"count":   len(results),
		"results": results,
	})
}

// raceInfo describes one supported race/ethnicity code.
type raceInfo struct {
	Code             int    `json:"code"`
	Label            string `json:"label"`
	HasAverageTables bool   `json:"has_average_tables"`
}

// handleListRaces lists the supported race/ethnicity codes.
func (s *Server) handleListRaces(c *gin.Context) {
	races := make([]raceInfo, 0, int(domain.RaceOtherAsian))
	for race := domain.RaceWhite; race <= domain.RaceOtherAsian; race++ {
		info := raceInfo{Code: int(race), Label: tables.Label(race)}
		if t, ok := tables.Default().Lookup(race); ok {
			info.HasAverageTables = t.HasAverage()
		}
		races = append(races, info)
	}
	c.JSON(http.StatusOK, gin.H{"races": races})
}

// handleGetAssessment fetches one stored assessment by ID.
func (s *Server) handleGetAssessment(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, domain.NewAPIError(
			domain.CodeDatabase, "assessment history is not enabled", "", c.GetString("correlation_id")))
		return
	}

	rec, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, domain.NewAPIError(
			domain.CodeDatabase, "assessment not found", "", c.GetString("correlation_id")))
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to load assessment")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.CodeDatabase, "failed to load assessment", "", c.GetString("correlation_id")))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// handleListAssessments lists recent assessments for one subject.
func (s *Server) handleListAssessments(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, domain.NewAPIError(
			domain.CodeDatabase, "assessment history is not enabled", "", c.GetString("correlation_id")))
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	recs, err := s.history.ListBySubject(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list assessments")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.CodeDatabase, "failed to list assessments", "", c.GetString("correlation_id")))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subject_id":  c.Param("id"),
		"count":       len(recs),
		"assessments": recs,
	})
}
