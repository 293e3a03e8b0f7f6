package domain

import (
	"time"
)

// RiskFactorProfile is the raw questionnaire input for one individual. It is
// immutable through the pipeline; the calculator never writes to it.
//
// Sentinel conventions: 99 means unknown/not applicable for the count and age
// fields; 98 in AgeAtFirstBirth means nulliparous.
type RiskFactorProfile struct {
	ID                   SubjectID `json:"id"`
	InitialAge           float64   `json:"initial_age"`
	ProjectionEndAge     float64   `json:"projection_end_age"`
	Race                 Race      `json:"race"`
	NumBreastBiopsies    int       `json:"num_breast_biopsies"`
	AgeAtMenarche        float64   `json:"age_at_menarche"`
	AgeAtFirstBirth      float64   `json:"age_at_first_birth"`
	NumRelativesWithBrCa int       `json:"num_relatives_with_brca"`
	AtypicalHyperplasia  int       `json:"atypical_hyperplasia"`
}

// RecodedValues holds the model category codes derived from a raw profile.
// Category ranges are race dependent: some races collapse the top category of
// a factor into the one below, or exclude a factor entirely by forcing its
// category to zero.
type RecodedValues struct {
	BiopsyCategory        int     `json:"biopsy_category"`
	MenarcheCategory      int     `json:"menarche_category"`
	FirstBirthCategory    int     `json:"first_birth_category"`
	RelativesCategory     int     `json:"relatives_category"`
	HyperplasiaMultiplier float64 `json:"hyperplasia_multiplier"`
	RaceLabel             string  `json:"race_label"`
}

// ValidationResult reports the outcome of recoding and validating a profile.
// Invariant: IsValid <=> len(Errors)==0 <=> ErrorIndicator==0.
type ValidationResult struct {
	IsValid        bool           `json:"is_valid"`
	Errors         []string       `json:"errors"`
	Warnings       []string       `json:"warnings"`
	Recoded        *RecodedValues `json:"recoded_values"`
	ErrorIndicator int            `json:"error_indicator"`
}

// RelativeRiskResult holds the logistic regression relative risks for the two
// age strata and the 1-108 pattern number. All fields are nil when validation
// failed or the race has no coefficient table.
type RelativeRiskResult struct {
	Under50       *float64 `json:"relative_risk_under_50"`
	AtOrAbove50   *float64 `json:"relative_risk_at_or_above_50"`
	PatternNumber *int     `json:"pattern_number"`
}

// CalculationError is the structured failure detail attached to a RiskResult.
// The calculator never lets a panic or error escape its public contract; every
// failure surfaces here instead.
type CalculationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *CalculationError) Error() string {
	return e.Code + ": " + e.Message
}

// RiskResult is the uniform outcome of one risk calculation. nil marks
// "not computed / not applicable" throughout; AbsoluteRisk is non-nil iff
// validation passed and every race table lookup succeeded.
type RiskResult struct {
	ID                      SubjectID         `json:"id"`
	Success                 bool              `json:"success"`
	AbsoluteRisk            *float64          `json:"absolute_risk"`
	AverageRisk             *float64          `json:"average_risk"`
	RelativeRiskUnder50     *float64          `json:"relative_risk_under_50"`
	RelativeRiskAtOrAbove50 *float64          `json:"relative_risk_at_or_above_50"`
	PatternNumber           *int              `json:"pattern_number"`
	RaceEthnicity           string            `json:"race_ethnicity"`
	Validation              ValidationResult  `json:"validation"`
	Error                   *CalculationError `json:"error"`
}

// CalculationOptions selects calculator behavior for one invocation.
type CalculationOptions struct {
	// RawInput treats the count/age fields as raw questionnaire answers and
	// recodes them. When false the four fields are assumed to already be
	// category integers and pass through with no hyperplasia adjustment.
	RawInput bool `json:"raw_input"`
	// IncludeAverage additionally computes the population-average risk over
	// the same age interval, where the race has an average reference table.
	IncludeAverage bool `json:"include_average"`
}

// DefaultCalculationOptions returns the options used by the public API:
// raw questionnaire input, no average-risk comparison.
func DefaultCalculationOptions() CalculationOptions {
	return CalculationOptions{RawInput: true}
}

// AssessmentRecord is the persisted trace of one completed calculation.
type AssessmentRecord struct {
	ID            string     `json:"id"`
	SubjectID     string     `json:"subject_id"`
	Race          Race       `json:"race"`
	InitialAge    float64    `json:"initial_age"`
	EndAge        float64    `json:"end_age"`
	AbsoluteRisk  *float64   `json:"absolute_risk"`
	AverageRisk   *float64   `json:"average_risk"`
	PatternNumber *int       `json:"pattern_number"`
	Succeeded     bool       `json:"succeeded"`
	ProfileJSON   string     `json:"profile_json"`
	ResultJSON    string     `json:"result_json"`
	CreatedAt     time.Time  `json:"created_at"`
}

// BatchRequest is the API payload for batch risk calculation.
type BatchRequest struct {
	Profiles []RiskFactorProfile `json:"profiles"`
	Options  *CalculationOptions `json:"options,omitempty"`
}
