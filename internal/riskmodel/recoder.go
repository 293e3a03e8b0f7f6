package riskmodel

import (
	"fmt"
	"math"

	"github.com/epiverse/bcrat/internal/domain"
)

// Hyperplasia hazard multipliers applied when at least one biopsy is on
// record: 0.93 for biopsies without atypical hyperplasia, 1.82 with it, and
// 1.00 when the finding is unknown.
const (
	multiplierNoHyperplasia      = 0.93
	multiplierHyperplasia        = 1.82
	multiplierHyperplasiaUnknown = 1.00
)

// raceRecoding is the per-race override layer applied on top of the shared
// baseline recoding. Races that exclude a covariate from their fitted model
// force its category to zero; races fitted with fewer levels collapse the top
// category into the one below.
type raceRecoding struct {
	collapseBiopsy      bool
	forceMenarcheZero   bool
	collapseMenarche    bool
	forceFirstBirthZero bool
	hispanicFirstBirth  bool
	collapseRelatives   bool
}

func recodingFor(race domain.Race) raceRecoding {
	switch {
	case race == domain.RaceAfricanAmerican:
		return raceRecoding{collapseMenarche: true, forceFirstBirthZero: true}
	case race == domain.RaceHispanicUSBorn:
		return raceRecoding{
			collapseBiopsy:     true,
			forceMenarcheZero:  true,
			hispanicFirstBirth: true,
			collapseRelatives:  true,
		}
	case race == domain.RaceHispanicForeign:
		return raceRecoding{
			collapseBiopsy:     true,
			hispanicFirstBirth: true,
			collapseRelatives:  true,
		}
	case race.IsAsian():
		return raceRecoding{collapseRelatives: true}
	}
	return raceRecoding{}
}

// RecodeAndValidate checks a raw profile and derives its model categories.
// Every applicable check runs and accumulates its message; one failure never
// suppresses the others. When rawInput is false the four count/age fields are
// assumed to already be category integers and pass through unchanged with no
// hyperplasia adjustment.
func (c *Calculator) RecodeAndValidate(profile *domain.RiskFactorProfile, rawInput bool) domain.ValidationResult {
	result := domain.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	raceLabel := domain.UnknownRaceLabel
	if t, ok := c.tables.Lookup(profile.Race); ok {
		raceLabel = t.Label
	}

	c.checkShape(profile, &result)
	c.checkAges(profile, &result)

	if !profile.Race.IsValid() {
		result.Errors = append(result.Errors,
			fmt.Sprintf("race/ethnicity code must be between 1 and 11, got %d", profile.Race))
	}

	if rawInput {
		c.checkBiopsyConsistency(profile, &result)
		c.checkMenarche(profile, &result)
		c.checkFirstBirth(profile, &result)
		result.Recoded = c.recode(profile, raceLabel)
	} else {
		result.Recoded = &domain.RecodedValues{
			BiopsyCategory:        profile.NumBreastBiopsies,
			MenarcheCategory:      int(profile.AgeAtMenarche),
			FirstBirthCategory:    int(profile.AgeAtFirstBirth),
			RelativesCategory:     profile.NumRelativesWithBrCa,
			HyperplasiaMultiplier: 1.0,
			RaceLabel:             raceLabel,
		}
	}

	result.IsValid = len(result.Errors) == 0
	if !result.IsValid {
		result.ErrorIndicator = 1
	}
	return result
}

// checkShape flags non-finite numeric input before the domain checks run.
func (c *Calculator) checkShape(profile *domain.RiskFactorProfile, result *domain.ValidationResult) {
	fields := []struct {
		name  string
		value float64
	}{
		{"initial_age", profile.InitialAge},
		{"projection_end_age", profile.ProjectionEndAge},
		{"age_at_menarche", profile.AgeAtMenarche},
		{"age_at_first_birth", profile.AgeAtFirstBirth},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s must be a finite number", f.name))
		}
	}
}

func (c *Calculator) checkAges(profile *domain.RiskFactorProfile, result *domain.ValidationResult) {
	t1, t2 := profile.InitialAge, profile.ProjectionEndAge

	if !(t1 >= domain.MinProjectionAge && t1 < domain.MaxProjectionAge) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("initial age must be at least 20 and under 90, got %s", domain.FormatAge(t1)))
	}
	if t2 > domain.MaxProjectionAge {
		result.Errors = append(result.Errors,
			fmt.Sprintf("projection end age must not exceed 90, got %s", domain.FormatAge(t2)))
	}
	if t2 <= t1 {
		result.Errors = append(result.Errors,
			fmt.Sprintf("projection end age (%s) must be greater than initial age (%s)",
				domain.FormatAge(t2), domain.FormatAge(t1)))
	}

	if t1 != math.Trunc(t1) {
		result.Warnings = append(result.Warnings, "initial age should typically be a whole number")
	}
	if t2 != math.Trunc(t2) {
		result.Warnings = append(result.Warnings, "projection end age should typically be a whole number")
	}
}

// checkBiopsyConsistency enforces the questionnaire dependency between the
// biopsy count and the atypical hyperplasia answer. It reads only raw inputs,
// so it always runs regardless of other failures.
func (c *Calculator) checkBiopsyConsistency(profile *domain.RiskFactorProfile, result *domain.ValidationResult) {
	nb := profile.NumBreastBiopsies
	ah := profile.AtypicalHyperplasia

	if nb == 0 || nb == domain.SentinelUnknown {
		if ah != domain.SentinelUnknown {
			result.Errors = append(result.Errors,
				"atypical hyperplasia must be marked not applicable (99) when no breast biopsy is on record")
		}
		return
	}
	if nb > 0 && nb < domain.SentinelUnknown {
		if ah != 0 && ah != 1 && ah != domain.SentinelUnknown {
			result.Errors = append(result.Errors,
				fmt.Sprintf("atypical hyperplasia must be 0, 1 or 99 when biopsies are on record, got %d", ah))
		}
	}
}

func (c *Calculator) checkMenarche(profile *domain.RiskFactorProfile, result *domain.ValidationResult) {
	am := profile.AgeAtMenarche
	if am != domain.SentinelUnknown && am > profile.InitialAge {
		result.Errors = append(result.Errors,
			fmt.Sprintf("age at menarche (%s) must not exceed initial age (%s)",
				domain.FormatAge(am), domain.FormatAge(profile.InitialAge)))
	}
}

func (c *Calculator) checkFirstBirth(profile *domain.RiskFactorProfile, result *domain.ValidationResult) {
	af := profile.AgeAtFirstBirth
	am := profile.AgeAtMenarche

	// Sentinel codes >=98 (nulliparous, unknown) bypass both temporal checks.
	if af >= domain.SentinelNulliparous {
		return
	}
	if am != domain.SentinelUnknown && af < am {
		result.Errors = append(result.Errors,
			fmt.Sprintf("age at first live birth (%s) must not precede age at menarche (%s)",
				domain.FormatAge(af), domain.FormatAge(am)))
	}
	if af > profile.InitialAge {
		result.Errors = append(result.Errors,
			fmt.Sprintf("age at first live birth (%s) must not exceed initial age (%s)",
				domain.FormatAge(af), domain.FormatAge(profile.InitialAge)))
	}
}

// recode derives the model categories from raw answers: shared baseline
// scheme first, race override layer second.
func (c *Calculator) recode(profile *domain.RiskFactorProfile, raceLabel string) *domain.RecodedValues {
	overrides := recodingFor(profile.Race)

	biopsyCat, multiplier := recodeBiopsy(profile.NumBreastBiopsies, profile.AtypicalHyperplasia)
	if overrides.collapseBiopsy && biopsyCat == 2 {
		biopsyCat = 1
	}

	menarcheCat := recodeMenarche(profile.AgeAtMenarche)
	if overrides.collapseMenarche && menarcheCat == 2 {
		menarcheCat = 1
	}
	if overrides.forceMenarcheZero {
		menarcheCat = 0
	}

	var firstBirthCat int
	switch {
	case overrides.forceFirstBirthZero:
		// Covariate excluded from the fitted model: forced to zero before
		// any scheme runs, sentinel inputs included.
		firstBirthCat = 0
	case overrides.hispanicFirstBirth:
		firstBirthCat = recodeFirstBirthHispanic(profile.AgeAtFirstBirth)
	default:
		firstBirthCat = recodeFirstBirth(profile.AgeAtFirstBirth)
	}

	relativesCat := recodeRelatives(profile.NumRelativesWithBrCa)
	if overrides.collapseRelatives && relativesCat == 2 {
		relativesCat = 1
	}

	return &domain.RecodedValues{
		BiopsyCategory:        biopsyCat,
		MenarcheCategory:      menarcheCat,
		FirstBirthCategory:    firstBirthCat,
		RelativesCategory:     relativesCat,
		HyperplasiaMultiplier: multiplier,
		RaceLabel:             raceLabel,
	}
}

func recodeBiopsy(numBiopsies, hyperplasia int) (category int, multiplier float64) {
	switch {
	case numBiopsies == 0 || numBiopsies >= domain.SentinelUnknown:
		category = 0
	case numBiopsies == 1:
		category = 1
	default:
		category = 2
	}

	// The multiplier only individualizes the hazard when a biopsy happened.
	if category == 0 {
		return category, 1.0
	}
	switch hyperplasia {
	case 0:
		return category, multiplierNoHyperplasia
	case 1:
		return category, multiplierHyperplasia
	default:
		return category, multiplierHyperplasiaUnknown
	}
}

func recodeMenarche(age float64) int {
	switch {
	case age == domain.SentinelUnknown || age >= 14:
		return 0
	case age >= 12:
		return 1
	case age > 0:
		return 2
	default:
		return 0
	}
}

func recodeFirstBirth(age float64) int {
	switch {
	case age == domain.SentinelUnknown || age < 20:
		return 0
	case age < 25:
		return 1
	case age < 30 || age == domain.SentinelNulliparous:
		return 2
	case age < domain.SentinelNulliparous:
		return 3
	default:
		return 0
	}
}

// recodeFirstBirthHispanic is the three-bucket scheme fitted for both
// Hispanic subgroups. It replaces the standard scheme outright.
func recodeFirstBirthHispanic(age float64) int {
	switch {
	case age == domain.SentinelUnknown || age < 20:
		return 0
	case age < 30:
		return 1
	default:
		return 2
	}
}

func recodeRelatives(num int) int {
	switch {
	case num == 0 || num >= domain.SentinelUnknown:
		return 0
	case num == 1:
		return 1
	case num >= 2:
		return 2
	default:
		return 0
	}
}
