// Package domain contains core business entities and types for individualized
// breast cancer risk assessment following the NCI Breast Cancer Risk
// Assessment Tool (the Gail model).
//
// Reference: Gail et al. (1989) Projecting individualized probabilities of
// developing breast cancer for white females who are being examined annually.
// J Natl Cancer Inst. 81(24):1879-86. doi: 10.1093/jnci/81.24.1879
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Race identifies one of the eleven race/ethnicity groups recognized by the
// Gail model. Each race carries its own incidence rates, competing mortality
// rates, attributable risk and logistic regression coefficients.
type Race int

const (
	RaceWhite            Race = 1
	RaceAfricanAmerican  Race = 2
	RaceHispanicUSBorn   Race = 3
	RaceNativeAmerican   Race = 4
	RaceHispanicForeign  Race = 5
	RaceChinese          Race = 6
	RaceJapanese         Race = 7
	RaceFilipino         Race = 8
	RaceHawaiian         Race = 9
	RacePacificIslander  Race = 10
	RaceOtherAsian       Race = 11
)

// Sentinel values used by the risk factor questionnaire. 98 marks a woman who
// has never given live birth; 99 marks an unknown or not-applicable answer.
const (
	SentinelNulliparous = 98
	SentinelUnknown     = 99
)

// Age window the model is fitted over. Initial age must fall in
// [MinProjectionAge, MaxProjectionAge) and the projection may not run past
// MaxProjectionAge.
const (
	MinProjectionAge = 20.0
	MaxProjectionAge = 90.0
)

// UnknownRaceLabel is reported when the race code falls outside [1,11].
const UnknownRaceLabel = "Unknown"

// Validation errors for risk model data integrity
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidRace  = errors.New("invalid race/ethnicity code")
	ErrNoRaceTable  = errors.New("no model table for race/ethnicity code")
	ErrNotValidated = errors.New("profile failed validation")
)

// IsValid reports whether the race code maps to a fitted model table.
func (r Race) IsValid() bool {
	return r >= RaceWhite && r <= RaceOtherAsian
}

// IsAsian reports whether the race code belongs to one of the six Asian
// subgroups, which share a single coefficient table.
func (r Race) IsAsian() bool {
	return r >= RaceChinese && r <= RaceOtherAsian
}

// IsHispanic reports whether the race code is one of the two Hispanic
// subgroups (US born or foreign born).
func (r Race) IsHispanic() bool {
	return r == RaceHispanicUSBorn || r == RaceHispanicForeign
}

// String returns a short machine-friendly name for logging and test output.
// Display labels live with the model tables.
func (r Race) String() string {
	switch r {
	case RaceWhite:
		return "white"
	case RaceAfricanAmerican:
		return "african-american"
	case RaceHispanicUSBorn:
		return "hispanic-us-born"
	case RaceNativeAmerican:
		return "native-american"
	case RaceHispanicForeign:
		return "hispanic-foreign-born"
	case RaceChinese:
		return "chinese"
	case RaceJapanese:
		return "japanese"
	case RaceFilipino:
		return "filipino"
	case RaceHawaiian:
		return "hawaiian"
	case RacePacificIslander:
		return "pacific-islander"
	case RaceOtherAsian:
		return "other-asian"
	default:
		return "unknown"
	}
}

// SubjectID is an opaque per-individual identifier. Upstream callers supply
// either a JSON string or a JSON number; both decode to the same value.
type SubjectID string

// UnmarshalJSON accepts both string and numeric identifiers.
func (s *SubjectID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty subject id")
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = SubjectID(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("subject id must be a string or number: %w", err)
	}
	*s = SubjectID(num.String())
	return nil
}

// String returns the identifier as supplied, numbers included.
func (s SubjectID) String() string {
	return string(s)
}

// PatternCount is the number of distinct combinations of the four categorical
// risk factors (3 biopsy x 3 menarche x 4 first-birth x 3 relatives).
const PatternCount = 108

// PatternNumber encodes one combination of the four recoded risk factor
// categories as an integer in [1,108], independent of race.
func PatternNumber(biopsyCat, menarcheCat, firstBirthCat, relativesCat int) int {
	return biopsyCat*36 + menarcheCat*12 + firstBirthCat*3 + relativesCat + 1
}

// FormatAge renders an age for error messages without trailing zeros.
func FormatAge(age float64) string {
	return strconv.FormatFloat(age, 'f', -1, 64)
}
