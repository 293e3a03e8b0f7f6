package riskmodel

import (
	"math"

	"github.com/epiverse/bcrat/internal/domain"
)

// RelativeRisk evaluates the race's logistic regression linear predictors for
// the two age strata and derives the 1-108 pattern number. It is a pure
// function of its inputs; races that exclude a covariate carry a zero
// coefficient, so no branching happens here.
//
// Returns the all-nil result when validation failed, the recoded categories
// are absent, or the race has no coefficient table.
func (c *Calculator) RelativeRisk(validation *domain.ValidationResult, race domain.Race) domain.RelativeRiskResult {
	if validation == nil || !validation.IsValid || validation.Recoded == nil {
		return domain.RelativeRiskResult{}
	}
	table, ok := c.tables.Lookup(race)
	if !ok {
		return domain.RelativeRiskResult{}
	}

	rv := validation.Recoded
	nb := float64(rv.BiopsyCategory)
	am := float64(rv.MenarcheCategory)
	af := float64(rv.FirstBirthCategory)
	nr := float64(rv.RelativesCategory)

	beta := table.Beta
	lpUnder50 := nb*beta[0] + am*beta[1] + af*beta[2] + nr*beta[3] +
		af*nr*beta[5] + math.Log(rv.HyperplasiaMultiplier)
	lpAtOrAbove50 := lpUnder50 + nb*beta[4]

	under50 := math.Exp(lpUnder50)
	atOrAbove50 := math.Exp(lpAtOrAbove50)
	pattern := domain.PatternNumber(rv.BiopsyCategory, rv.MenarcheCategory,
		rv.FirstBirthCategory, rv.RelativesCategory)

	return domain.RelativeRiskResult{
		Under50:       &under50,
		AtOrAbove50:   &atOrAbove50,
		PatternNumber: &pattern,
	}
}
