// Package riskmodel implements the Gail model pipeline: questionnaire
// validation and recoding, logistic regression relative risk, and absolute
// risk projection under competing hazards.
//
// The pipeline is purely functional. Every stage is a deterministic
// computation over its inputs with no I/O and no shared mutable state; the
// race tables it reads are immutable constants.
package riskmodel

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/epiverse/bcrat/internal/domain"
	"github.com/epiverse/bcrat/internal/tables"
)

// Calculator sequences the three pipeline stages and converts any internal
// fault into a structured error result. It never panics past its public
// methods.
type Calculator struct {
	tables tables.Provider
	logger *logrus.Logger
}

// NewCalculator creates a calculator backed by the given model tables.
func NewCalculator(provider tables.Provider, logger *logrus.Logger) *Calculator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Calculator{
		tables: provider,
		logger: logger,
	}
}

// Calculate runs the full pipeline for one profile. The returned result is
// never nil: validation failures, race table gaps and unexpected faults all
// come back as a populated result with Success=false and AbsoluteRisk=nil.
func (c *Calculator) Calculate(profile *domain.RiskFactorProfile, opts domain.CalculationOptions) (result *domain.RiskResult) {
	result = &domain.RiskResult{
		RaceEthnicity: domain.UnknownRaceLabel,
	}
	if profile == nil {
		result.Error = domain.NewCalculationError(domain.CodeInvalidInput, "risk factor profile is required")
		return result
	}
	result.ID = profile.ID

	// Boundary catch-all: batch callers must always get N results back, so
	// no fault may escape as a panic.
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithFields(logrus.Fields{
				"subject_id": profile.ID,
				"panic":      r,
			}).Error("Risk calculation fault recovered")
			result.Success = false
			result.AbsoluteRisk = nil
			result.AverageRisk = nil
			result.Error = domain.NewCalculationError(domain.CodeInternal,
				fmt.Sprintf("unexpected computational fault: %v", r))
		}
	}()

	validation := c.RecodeAndValidate(profile, opts.RawInput)
	result.Validation = validation
	if validation.Recoded != nil {
		result.RaceEthnicity = validation.Recoded.RaceLabel
	}
	if !validation.IsValid {
		result.Error = domain.NewCalculationError(domain.CodeValidation, "risk factor profile failed validation")
		return result
	}

	relRisk := c.RelativeRisk(&validation, profile.Race)
	result.RelativeRiskUnder50 = relRisk.Under50
	result.RelativeRiskAtOrAbove50 = relRisk.AtOrAbove50
	result.PatternNumber = relRisk.PatternNumber
	if relRisk.Under50 == nil || relRisk.AtOrAbove50 == nil {
		result.Error = domain.NewCalculationError(domain.CodeRaceLookup,
			fmt.Sprintf("no relative risk model for race code %d", profile.Race))
		return result
	}

	absRisk := c.AbsoluteRisk(profile, &validation, &relRisk, false)
	if absRisk == nil {
		result.Error = domain.NewCalculationError(domain.CodeIntegration,
			fmt.Sprintf("no rate table for race code %d", profile.Race))
		return result
	}
	result.AbsoluteRisk = absRisk
	result.Success = true

	if opts.IncludeAverage {
		// A failed average-risk pass leaves AverageRisk null without
		// touching the primary success flag.
		result.AverageRisk = c.AbsoluteRisk(profile, &validation, &relRisk, true)
	}

	return result
}

// CalculateBatch maps Calculate over the profiles independently. The output
// always has one entry per input, in input order, regardless of how many
// profiles fail.
func (c *Calculator) CalculateBatch(profiles []domain.RiskFactorProfile, opts domain.CalculationOptions) []*domain.RiskResult {
	results := make([]*domain.RiskResult, len(profiles))
	for i := range profiles {
		results[i] = c.Calculate(&profiles[i], opts)
	}
	return results
}
