package riskmodel

import (
	"math"

	"github.com/epiverse/bcrat/internal/domain"
	"github.com/epiverse/bcrat/internal/tables"
)

// singleYears is the length of the expanded rate vectors: one entry per year
// of age in [20,90).
const singleYears = 70

// AbsoluteRisk projects the probability of developing invasive breast cancer
// between the profile's initial age and projection end age, as a percentage.
//
// The projection integrates two competing piecewise-constant exponential
// hazards year by year: the individualized incidence hazard W*lambda1 and the
// competing mortality hazard lambda2. Within each sub-interval the closed
// form (W*l1/h)*exp(-H)*(1-exp(-h*dt)) is exact, chained across intervals via
// the accumulated hazard H.
//
// In average mode the race's population average rate vectors are substituted
// and W is identically one; races without an average reference yield nil.
// Returns nil when validation failed or the race has no rate table.
func (c *Calculator) AbsoluteRisk(profile *domain.RiskFactorProfile, validation *domain.ValidationResult, relRisk *domain.RelativeRiskResult, averageMode bool) *float64 {
	if validation == nil || !validation.IsValid {
		return nil
	}
	table, ok := c.tables.Lookup(profile.Race)
	if !ok {
		return nil
	}

	incidence5, mortality5 := table.Incidence, table.Mortality
	if averageMode {
		if !table.HasAverage() {
			return nil
		}
		incidence5, mortality5 = table.AverageIncidence, table.AverageMortality
	}

	weights, ok := buildWeights(table, relRisk, averageMode)
	if !ok {
		return nil
	}

	lambda1 := expandToSingleYears(incidence5)
	lambda2 := expandToSingleYears(mortality5)

	risk := integrate(profile.InitialAge, profile.ProjectionEndAge, weights, lambda1, lambda2)
	percent := risk * 100
	return &percent
}

// expandToSingleYears repeats each five-year bucket value five times, so that
// index 0 of the result corresponds to age 20.
func expandToSingleYears(rates []float64) [singleYears]float64 {
	var expanded [singleYears]float64
	for i, rate := range rates {
		for j := 0; j < 5; j++ {
			expanded[i*5+j] = rate
		}
	}
	return expanded
}

// buildWeights produces the per-year incidence scalar: (1-AR) times the
// relative risk for the age stratum, or identically 1.0 in average mode.
func buildWeights(table *tables.ModelTable, relRisk *domain.RelativeRiskResult, averageMode bool) ([singleYears]float64, bool) {
	var weights [singleYears]float64

	if averageMode {
		for i := range weights {
			weights[i] = 1.0
		}
		return weights, true
	}

	if relRisk == nil || relRisk.Under50 == nil || relRisk.AtOrAbove50 == nil {
		return weights, false
	}
	under50 := table.AttributableRiskComplement[0] * *relRisk.Under50
	atOrAbove50 := table.AttributableRiskComplement[1] * *relRisk.AtOrAbove50
	for i := range weights {
		if i < 30 { // ages 20-49
			weights[i] = under50
		} else {
			weights[i] = atOrAbove50
		}
	}
	return weights, true
}

// integrate performs the piecewise hazard integration from t1 to t2. The
// first and last intervals use fractional lengths when the ages are not
// whole; a final interval landing exactly on an integer age consumes the full
// closing year.
func integrate(t1, t2 float64, weights, lambda1, lambda2 [singleYears]float64) float64 {
	startIndex := int(math.Floor(t1)) - int(domain.MinProjectionAge)
	intervals := int(math.Ceil(t2)) - int(math.Floor(t1))
	fracStart := t1 - math.Floor(t1)
	fracEnd := t2 - math.Floor(t2)

	risk := 0.0
	cumulativeHazard := 0.0
	for j := 0; j < intervals; j++ {
		idx := startIndex + j

		var dt float64
		switch {
		case intervals == 1:
			dt = t2 - t1
		case j == 0:
			dt = 1 - fracStart
		case j == intervals-1:
			if fracEnd > 0 {
				dt = fracEnd
			} else {
				dt = 1
			}
		default:
			dt = 1
		}

		// lambda2 is strictly positive in every race table, so h > 0.
		incidence := weights[idx] * lambda1[idx]
		h := incidence + lambda2[idx]
		risk += (incidence / h) * math.Exp(-cumulativeHazard) * (1 - math.Exp(-h*dt))
		cumulativeHazard += h * dt
	}
	return risk
}
