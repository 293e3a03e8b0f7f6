package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/epiverse/bcrat/internal/domain"
	"github.com/epiverse/bcrat/internal/tables"
)

// CalculateRiskParams defines parameters for the calculate_risk tool.
type CalculateRiskParams struct {
	Profile        domain.RiskFactorProfile `json:"profile"`
	RawInput       *bool                    `json:"raw_input,omitempty"`
	IncludeAverage bool                     `json:"include_average,omitempty"`
}

// ValidateProfileParams defines parameters for the validate_profile tool.
type ValidateProfileParams struct {
	Profile  domain.RiskFactorProfile `json:"profile"`
	RawInput *bool                    `json:"raw_input,omitempty"`
}

// BatchCalculateParams defines parameters for the batch_calculate_risk tool.
type BatchCalculateParams struct {
	Profiles       []domain.RiskFactorProfile `json:"profiles"`
	RawInput       *bool                      `json:"raw_input,omitempty"`
	IncludeAverage bool                       `json:"include_average,omitempty"`
}

// ListRacesParams defines parameters for the list_races tool (none).
type ListRacesParams struct{}

// raceEntry is one row of the list_races tool result.
type raceEntry struct {
	Code             int    `json:"code"`
	Label            string `json:"label"`
	HasAverageTables bool   `json:"has_average_tables"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "calculate_risk",
		Description: "Calculate the absolute risk of invasive breast cancer over a projection " +
			"interval using the Gail model, from age, race/ethnicity, and reproductive and " +
			"family history risk factors.",
	}, s.handleCalculateRisk)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "validate_profile",
		Description: "Validate and recode a risk factor profile without computing risk. " +
			"Reports validation errors, advisory warnings, and the recoded factor categories.",
	}, s.handleValidateProfile)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: "batch_calculate_risk",
		Description: "Calculate breast cancer risk for multiple profiles in one call. " +
			"Each profile is evaluated independently; one invalid profile never affects the others.",
	}, s.handleBatchCalculate)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_races",
		Description: "List the supported race/ethnicity codes with their display labels.",
	}, s.handleListRaces)

	s.logger.WithField("tool_count", 4).Info("Registered MCP tools")
}

func (s *Server) options(rawInput *bool, includeAverage bool) domain.CalculationOptions {
	opts := domain.DefaultCalculationOptions()
	if rawInput != nil {
		opts.RawInput = *rawInput
	}
	opts.IncludeAverage = includeAverage
	return opts
}

// handleCalculateRisk handles the calculate_risk tool invocation.
func (s *Server) handleCalculateRisk(ctx context.Context, req *mcp.CallToolRequest, params CalculateRiskParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "calculate_risk").Info("Tool invoked")

	result := s.service.CalculateRisk(ctx, &params.Profile, s.options(params.RawInput, params.IncludeAverage))

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: summarizeResult(result)},
		},
	}, result, nil
}

// handleValidateProfile handles the validate_profile tool invocation.
func (s *Server) handleValidateProfile(ctx context.Context, req *mcp.CallToolRequest, params ValidateProfileParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "validate_profile").Info("Tool invoked")

	rawInput := true
	if params.RawInput != nil {
		rawInput = *params.RawInput
	}
	validation := s.engine.RecodeAndValidate(&params.Profile, rawInput)

	var text string
	if validation.IsValid {
		text = "Profile is valid."
		if len(validation.Warnings) > 0 {
			text += " Warnings: " + strings.Join(validation.Warnings, "; ")
		}
	} else {
		text = fmt.Sprintf("Profile is invalid (%d error(s)): %s",
			len(validation.Errors), strings.Join(validation.Errors, "; "))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, validation, nil
}

// handleBatchCalculate handles the batch_calculate_risk tool invocation.
func (s *Server) handleBatchCalculate(ctx context.Context, req *mcp.CallToolRequest, params BatchCalculateParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithFields(map[string]interface{}{
		"tool":       "batch_calculate_risk",
		"batch_size": len(params.Profiles),
	}).Info("Tool invoked")

	if len(params.Profiles) == 0 {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "No profiles supplied."},
			},
		}, nil, nil
	}

	results := s.service.CalculateBatchRisk(ctx, params.Profiles, s.options(params.RawInput, params.IncludeAverage))

	succeeded := 0
	for _, r := range results {
		if r != nil && r.Success {
			succeeded++
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Evaluated %d profiles: %d succeeded, %d failed.",
					len(results), succeeded, len(results)-succeeded),
			},
		},
	}, results, nil
}

// handleListRaces handles the list_races tool invocation.
func (s *Server) handleListRaces(ctx context.Context, req *mcp.CallToolRequest, params ListRacesParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", "list_races").Info("Tool invoked")

	entries := make([]raceEntry, 0, int(domain.RaceOtherAsian))
	lines := make([]string, 0, int(domain.RaceOtherAsian))
	for race := domain.RaceWhite; race <= domain.RaceOtherAsian; race++ {
		entry := raceEntry{Code: int(race), Label: tables.Label(race)}
		if t, ok := tables.Default().Lookup(race); ok {
			entry.HasAverageTables = t.HasAverage()
		}
		entries = append(entries, entry)
		lines = append(lines, fmt.Sprintf("%d: %s", entry.Code, entry.Label))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: strings.Join(lines, "\n")},
		},
	}, entries, nil
}

// summarizeResult renders one result as a short human-readable line.
func summarizeResult(result *domain.RiskResult) string {
	if !result.Success {
		if result.Error != nil {
			return fmt.Sprintf("Calculation failed: %s", result.Error.Message)
		}
		return "Calculation failed."
	}

	text := fmt.Sprintf("Absolute risk of invasive breast cancer: %.2f%% (%s).",
		*result.AbsoluteRisk, result.RaceEthnicity)
	if result.AverageRisk != nil {
		text += fmt.Sprintf(" Population average over the same interval: %.2f%%.", *result.AverageRisk)
	}
	return text
}
