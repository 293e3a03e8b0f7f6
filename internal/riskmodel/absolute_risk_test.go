package riskmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epiverse/bcrat/internal/domain"
)

func computeAbsoluteRisk(t *testing.T, calc *Calculator, profile *domain.RiskFactorProfile, averageMode bool) *float64 {
	t.Helper()
	validation := calc.RecodeAndValidate(profile, true)
	require.True(t, validation.IsValid, "errors: %v", validation.Errors)
	rr := calc.RelativeRisk(&validation, profile.Race)
	return calc.AbsoluteRisk(profile, &validation, &rr, averageMode)
}

func TestAbsoluteRisk_FiveYearWindow(t *testing.T) {
	calc := newTestCalculator()

	risk := computeAbsoluteRisk(t, calc, validProfile(), false)
	require.NotNil(t, risk)
	assert.Greater(t, *risk, 0.0)
	assert.Less(t, *risk, 5.0)
}

func TestAbsoluteRisk_LifetimeExceedsFiveYearWindow(t *testing.T) {
	calc := newTestCalculator()

	profile := validProfile()
	profile.InitialAge = 35
	profile.ProjectionEndAge = 90

	risk := computeAbsoluteRisk(t, calc, profile, false)
	require.NotNil(t, risk)
	assert.Greater(t, *risk, 5.0)
	assert.Less(t, *risk, 20.0)
}

func TestAbsoluteRisk_FractionalAges(t *testing.T) {
	calc := newTestCalculator()

	// Exercises the partial first interval (0.5 of age 45) and partial last
	// interval (0.7 of age 50) at the same time.
	profile := validProfile()
	profile.InitialAge = 45.5
	profile.ProjectionEndAge = 50.7

	risk := computeAbsoluteRisk(t, calc, profile, false)
	require.NotNil(t, risk)
	assert.Greater(t, *risk, 0.0)

	// A wider interval must carry at least as much risk.
	wide := validProfile()
	wide.InitialAge = 45
	wide.ProjectionEndAge = 51
	wideRisk := computeAbsoluteRisk(t, calc, wide, false)
	require.NotNil(t, wideRisk)
	assert.Greater(t, *wideRisk, *risk)
}

func TestAbsoluteRisk_InvalidValidationYieldsNil(t *testing.T) {
	calc := newTestCalculator()

	profile := validProfile()
	validation := domain.ValidationResult{IsValid: false, ErrorIndicator: 1}

	assert.Nil(t, calc.AbsoluteRisk(profile, &validation, &domain.RelativeRiskResult{}, false))
}

func TestAbsoluteRisk_AverageModeOnlyForReferencedRaces(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		race       domain.Race
		hasAverage bool
	}{
		{domain.RaceWhite, true},
		{domain.RaceNativeAmerican, true},
		{domain.RaceAfricanAmerican, false},
		{domain.RaceHispanicUSBorn, false},
		{domain.RaceHispanicForeign, false},
		{domain.RaceChinese, false},
	}

	for _, tt := range tests {
		t.Run(tt.race.String(), func(t *testing.T) {
			profile := validProfile()
			profile.Race = tt.race

			risk := computeAbsoluteRisk(t, calc, profile, true)
			if tt.hasAverage {
				require.NotNil(t, risk)
				assert.Greater(t, *risk, 0.0)
			} else {
				assert.Nil(t, risk)
			}
		})
	}
}

func TestAbsoluteRisk_AverageOrdering(t *testing.T) {
	calc := newTestCalculator()

	t.Run("elevated profile exceeds average", func(t *testing.T) {
		profile := validProfile()
		profile.NumBreastBiopsies = 2
		profile.AtypicalHyperplasia = 1
		profile.AgeAtMenarche = 11
		profile.AgeAtFirstBirth = 35
		profile.NumRelativesWithBrCa = 2

		individual := computeAbsoluteRisk(t, calc, profile, false)
		average := computeAbsoluteRisk(t, calc, profile, true)
		require.NotNil(t, individual)
		require.NotNil(t, average)
		assert.Greater(t, *individual, *average)
	})

	t.Run("baseline profile falls below average", func(t *testing.T) {
		profile := validProfile()
		profile.AgeAtMenarche = 14
		profile.AgeAtFirstBirth = 19

		individual := computeAbsoluteRisk(t, calc, profile, false)
		average := computeAbsoluteRisk(t, calc, profile, true)
		require.NotNil(t, individual)
		require.NotNil(t, average)
		assert.Less(t, *individual, *average)
	})
}

func TestAbsoluteRisk_AllRacesProduceSaneValues(t *testing.T) {
	calc := newTestCalculator()

	for race := domain.RaceWhite; race <= domain.RaceOtherAsian; race++ {
		profile := validProfile()
		profile.Race = race

		risk := computeAbsoluteRisk(t, calc, profile, false)
		require.NotNil(t, risk, "race=%d", race)
		assert.Greater(t, *risk, 0.0, "race=%d", race)
		assert.Less(t, *risk, 100.0, "race=%d", race)
	}
}

func TestExpandToSingleYears(t *testing.T) {
	rates := []float64{
		0.001, 0.002, 0.003, 0.004, 0.005, 0.006, 0.007,
		0.008, 0.009, 0.010, 0.011, 0.012, 0.013, 0.014,
	}

	expanded := expandToSingleYears(rates)

	assert.Equal(t, 0.001, expanded[0])
	assert.Equal(t, 0.001, expanded[4])
	assert.Equal(t, 0.002, expanded[5])
	assert.Equal(t, 0.014, expanded[65])
	assert.Equal(t, 0.014, expanded[69])
}

func TestIntegrate_SingleIntervalMatchesClosedForm(t *testing.T) {
	var weights, lambda1, lambda2 [singleYears]float64
	for i := range weights {
		weights[i] = 1.0
		lambda1[i] = 0.002
		lambda2[i] = 0.001
	}

	// One interval of length 1: risk = (l1/h)(1 - exp(-h)).
	got := integrate(45, 46, weights, lambda1, lambda2)
	h := 0.003
	want := (0.002 / h) * (1 - math.Exp(-h))
	assert.InDelta(t, want, got, 1e-12)
}

func TestIntegrate_IntegerEndConsumesFullFinalYear(t *testing.T) {
	var weights, lambda1, lambda2 [singleYears]float64
	for i := range weights {
		weights[i] = 1.0
		lambda1[i] = 0.002
		lambda2[i] = 0.001
	}

	// With constant hazards, splitting [45,47) into two unit intervals must
	// agree with the closed form over length 2.
	got := integrate(45, 47, weights, lambda1, lambda2)
	h := 0.003
	want := (0.002 / h) * (1 - math.Exp(-2*h))
	assert.InDelta(t, want, got, 1e-12)
}

func TestIntegrate_FractionalBoundsPartitionCorrectly(t *testing.T) {
	var weights, lambda1, lambda2 [singleYears]float64
	for i := range weights {
		weights[i] = 1.0
		lambda1[i] = 0.002
		lambda2[i] = 0.001
	}

	// Constant hazards: only total length matters, however it is partitioned.
	got := integrate(45.5, 50.7, weights, lambda1, lambda2)
	h := 0.003
	length := 50.7 - 45.5
	want := (0.002 / h) * (1 - math.Exp(-h*length))
	assert.InDelta(t, want, got, 1e-9)
}
