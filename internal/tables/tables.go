// Package tables holds the race-indexed constant tables consumed by the Gail
// model pipeline: SEER breast cancer incidence rates, NCHS competing mortality
// rates, attributable risk complements and logistic regression coefficients.
//
// Rates are annual hazards bucketed into fourteen five-year age groups
// covering ages [20,90). Races that share a fitted model alias the same
// underlying slices rather than carrying copies, so an update to a shared
// table can never drift between its aliases.
package tables

import (
	"github.com/epiverse/bcrat/internal/domain"
)

// AgeGroups is the number of five-year rate buckets per table.
const AgeGroups = 14

// ModelTable bundles every constant the pipeline needs for one race code.
// AverageIncidence/AverageMortality are nil for races without a population
// average reference (only White and Native-American/Other carry one).
type ModelTable struct {
	Label string

	// Incidence is the annual breast cancer incidence hazard per five-year
	// age group; Mortality is the competing all-other-cause mortality hazard.
	Incidence []float64
	Mortality []float64

	// AttributableRiskComplement is (1 - AR) for ages <50 and >=50.
	AttributableRiskComplement [2]float64

	// Beta holds the six logistic regression coefficients:
	// [0] biopsies, [1] menarche, [2] first birth, [3] relatives,
	// [4] age>=50 x biopsies interaction, [5] first birth x relatives.
	Beta [6]float64

	AverageIncidence []float64
	AverageMortality []float64
}

// HasAverage reports whether the race carries population average rate vectors.
func (t *ModelTable) HasAverage() bool {
	return t.AverageIncidence != nil && t.AverageMortality != nil
}

// Provider resolves a race code to its model table.
type Provider interface {
	Lookup(race domain.Race) (*ModelTable, bool)
}

// Breast cancer incidence, SEER white females 1983-87.
var whiteIncidence = []float64{
	0.0000100, 0.0000760, 0.0002660, 0.0006610, 0.0012650, 0.0018660, 0.0022110,
	0.0027210, 0.0033480, 0.0039230, 0.0041780, 0.0044390, 0.0044210, 0.0041090,
}

// Competing mortality, NCHS white females 1985-87.
var whiteMortality = []float64{
	0.0004930, 0.0005310, 0.0006250, 0.0008250, 0.0013070, 0.0021810, 0.0036550,
	0.0058520, 0.0094390, 0.0150280, 0.0238390, 0.0388320, 0.0668280, 0.1449080,
}

// Population average rates for the "average woman" comparison, SEER/NCHS
// white females 1992-96.
var whiteAverageIncidence = []float64{
	0.0000122, 0.0000741, 0.0002297, 0.0005649, 0.0011645, 0.0019525, 0.0026154,
	0.0030279, 0.0036757, 0.0041672, 0.0044244, 0.0046536, 0.0047352, 0.0043884,
}

var whiteAverageMortality = []float64{
	0.0004412, 0.0005254, 0.0006746, 0.0009092, 0.0012534, 0.0019570, 0.0032984,
	0.0054622, 0.0091035, 0.0141854, 0.0225935, 0.0361146, 0.0613626, 0.1420663,
}

var whiteBeta = [6]float64{
	0.5292641686, 0.0940103059, 0.2186262218, 0.9583027845, -0.2880424830, -0.1908113865,
}

var whiteAttribRisk = [2]float64{0.5788413, 0.5788413}

// SEER black females 1994-98; NCHS 1996-98. The CARE model excludes age at
// first birth for African-American women, so beta[2] and beta[5] are zero.
var africanAmericanIncidence = []float64{
	0.0000270, 0.0001129, 0.0003109, 0.0006764, 0.0011944, 0.0018739, 0.0024150,
	0.0029111, 0.0031013, 0.0036656, 0.0039313, 0.0040895, 0.0039679, 0.0036371,
}

var africanAmericanMortality = []float64{
	0.0007435, 0.0010170, 0.0014594, 0.0021593, 0.0031508, 0.0044878, 0.0063228,
	0.0096304, 0.0147182, 0.0211630, 0.0326604, 0.0456409, 0.0683519, 0.1327126,
}

var africanAmericanBeta = [6]float64{
	0.1822121131, 0.2672530336, 0.0, 0.4757242578, -0.1119411682, 0.0,
}

var africanAmericanAttribRisk = [2]float64{0.7294988, 0.7439714}

// San Francisco Bay Area and California registry rates, Hispanic females
// born in the US, 1995-2004. Menarche is excluded from the fitted model.
var hispanicUSIncidence = []float64{
	0.0000166, 0.0000741, 0.0002740, 0.0006099, 0.0012225, 0.0019027, 0.0023142,
	0.0028357, 0.0031144, 0.0030794, 0.0033344, 0.0035082, 0.0025308, 0.0020414,
}

var hispanicUSMortality = []float64{
	0.0003612, 0.0004900, 0.0006501, 0.0009378, 0.0012995, 0.0019610, 0.0028632,
	0.0046030, 0.0075406, 0.0120899, 0.0191661, 0.0317903, 0.0517028, 0.1115542,
}

var hispanicUSBeta = [6]float64{
	0.0970783641, 0.0, 0.2318368334, 0.1666854400, 0.0, 0.0,
}

var hispanicUSAttribRisk = [2]float64{0.7492947884, 0.7782154917}

// Foreign-born Hispanic females, same registries and period.
var hispanicForeignIncidence = []float64{
	0.0000102, 0.0000531, 0.0001578, 0.0003602, 0.0007617, 0.0011599, 0.0014111,
	0.0017245, 0.0020619, 0.0023603, 0.0025575, 0.0028227, 0.0028295, 0.0025868,
}

var hispanicForeignMortality = []float64{
	0.0003020, 0.0003916, 0.0005406, 0.0007569, 0.0010601, 0.0014781, 0.0021387,
	0.0033605, 0.0053805, 0.0082517, 0.0131260, 0.0213339, 0.0356794, 0.0787895,
}

var hispanicForeignBeta = [6]float64{
	0.4798624017, 0.2593922322, 0.4669246218, 0.9076679727, 0.0, 0.0,
}

var hispanicForeignAttribRisk = [2]float64{0.4286649898, 0.4503523387}

// SEER Asian and Pacific Islander females 1998-2002. All six subgroups share
// this one fitted model.
var asianIncidence = []float64{
	0.0000134, 0.0000601, 0.0001900, 0.0004427, 0.0008742, 0.0013532, 0.0016945,
	0.0019378, 0.0021419, 0.0021993, 0.0022949, 0.0022526, 0.0019999, 0.0016854,
}

var asianMortality = []float64{
	0.0002550, 0.0003280, 0.0004429, 0.0006010, 0.0008577, 0.0012831, 0.0020201,
	0.0033980, 0.0055739, 0.0093358, 0.0157885, 0.0266013, 0.0465373, 0.1088824,
}

var asianBeta = [6]float64{
	0.5526361226, 0.0749925759, 0.2763826829, 0.7918563372, 0.0, 0.0,
}

var asianAttribRisk = [2]float64{0.4751980643, 0.5031640168}

func asianTable(label string) *ModelTable {
	return &ModelTable{
		Label:                      label,
		Incidence:                  asianIncidence,
		Mortality:                  asianMortality,
		AttributableRiskComplement: asianAttribRisk,
		Beta:                       asianBeta,
	}
}

// registry maps every race code to its table. Native-American/Other aliases
// the White arrays, and the six Asian subgroups alias one shared set.
var registry = map[domain.Race]*ModelTable{
	domain.RaceWhite: {
		Label:                      "White",
		Incidence:                  whiteIncidence,
		Mortality:                  whiteMortality,
		AttributableRiskComplement: whiteAttribRisk,
		Beta:                       whiteBeta,
		AverageIncidence:           whiteAverageIncidence,
		AverageMortality:           whiteAverageMortality,
	},
	domain.RaceAfricanAmerican: {
		Label:                      "African-American",
		Incidence:                  africanAmericanIncidence,
		Mortality:                  africanAmericanMortality,
		AttributableRiskComplement: africanAmericanAttribRisk,
		Beta:                       africanAmericanBeta,
	},
	domain.RaceHispanicUSBorn: {
		Label:                      "Hispanic-American (US born)",
		Incidence:                  hispanicUSIncidence,
		Mortality:                  hispanicUSMortality,
		AttributableRiskComplement: hispanicUSAttribRisk,
		Beta:                       hispanicUSBeta,
	},
	domain.RaceNativeAmerican: {
		Label:                      "Native American or other",
		Incidence:                  whiteIncidence,
		Mortality:                  whiteMortality,
		AttributableRiskComplement: whiteAttribRisk,
		Beta:                       whiteBeta,
		AverageIncidence:           whiteAverageIncidence,
		AverageMortality:           whiteAverageMortality,
	},
	domain.RaceHispanicForeign: {
		Label:                      "Hispanic-American (foreign born)",
		Incidence:                  hispanicForeignIncidence,
		Mortality:                  hispanicForeignMortality,
		AttributableRiskComplement: hispanicForeignAttribRisk,
		Beta:                       hispanicForeignBeta,
	},
	domain.RaceChinese:         asianTable("Chinese-American"),
	domain.RaceJapanese:        asianTable("Japanese-American"),
	domain.RaceFilipino:        asianTable("Filipino-American"),
	domain.RaceHawaiian:        asianTable("Hawaiian-American"),
	domain.RacePacificIslander: asianTable("Other Pacific Islander"),
	domain.RaceOtherAsian:      asianTable("Other Asian-American"),
}

type staticProvider struct{}

// Lookup returns the model table for a race code.
func (staticProvider) Lookup(race domain.Race) (*ModelTable, bool) {
	t, ok := registry[race]
	return t, ok
}

// Default returns the statically linked table provider.
func Default() Provider {
	return staticProvider{}
}

// Label returns the display label for a race code, or the unknown label when
// the code has no table.
func Label(race domain.Race) string {
	if t, ok := registry[race]; ok {
		return t.Label
	}
	return domain.UnknownRaceLabel
}
