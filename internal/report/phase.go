package report

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PhaseSpec declares one stage of report generation. The table of
// specs is fixed configuration: phases run in declared order and each
// produces exactly one section of the final document.
type PhaseSpec struct {
	Name        string   `yaml:"name"`
	Heading     string   `yaml:"heading"`
	Level       int      `yaml:"level"`
	Keywords    []string `yaml:"keywords"`
	Temperature float64  `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	DigestOnly  bool     `yaml:"digest_only"`
	Instruction string   `yaml:"instruction"`
}

// DefaultPhases returns the built-in equity research phase table.
func DefaultPhases() []PhaseSpec {
	return []PhaseSpec{
		{
			Name:        "executive_summary",
			Heading:     "Executive Summary",
			Level:       1,
			Temperature: 0.3,
			MaxTokens:   1000,
			DigestOnly:  true,
			Instruction: "Based on the following summary of information about {company}, write ONLY the Executive Summary section of an equity research report:",
		},
		{
			Name:        "business_overview",
			Heading:     "Business Overview",
			Level:       1,
			Keywords:    []string{"business", "company", "overview", "product", "service"},
			Temperature: 0.3,
			MaxTokens:   1500,
			Instruction: "Based on the following information about {company}, write ONLY the Business Overview section of an equity research report. Focus on the company's products, services, market position, and business model:",
		},
		{
			Name:        "financial_analysis",
			Heading:     "Financial Analysis",
			Level:       1,
			Keywords:    []string{"financial", "revenue", "profit", "margin", "growth", "income", "balance", "cash flow"},
			Temperature: 0.3,
			MaxTokens:   2000,
			Instruction: "Based on the following financial information about {company}, write ONLY the Financial Analysis section of an equity research report. Focus on revenue trends, profitability, balance sheet strength, and cash flow:",
		},
		{
			Name:        "competitive_landscape",
			Heading:     "Competitive Landscape",
			Level:       1,
			Keywords:    []string{"competition", "competitor", "market", "industry", "landscape", "peer", "swot", "strength"},
			Temperature: 0.3,
			MaxTokens:   1500,
			Instruction: "Based on the following information about {company}'s competitive position, write ONLY the Competitive Landscape section of an equity research report:",
		},
		{
			Name:        "growth_prospects",
			Heading:     "Growth Prospects and Future Outlook",
			Level:       1,
			Keywords:    []string{"growth", "future", "outlook", "expansion", "strategy", "opportunity", "initiative"},
			Temperature: 0.3,
			MaxTokens:   1500,
			Instruction: "Based on the following information about {company}'s growth prospects, write ONLY the Growth Prospects and Future Outlook section of an equity research report:",
		},
		{
			Name:        "risks",
			Heading:     "Risks and Challenges",
			Level:       1,
			Keywords:    []string{"risk", "challenge", "threat", "regulation", "compliance", "issue", "problem", "concern"},
			Temperature: 0.3,
			MaxTokens:   1500,
			Instruction: "Based on the following information about risks facing {company}, write ONLY the Risks and Challenges section of an equity research report:",
		},
		{
			Name:        "conclusion",
			Heading:     "Conclusion",
			Level:       1,
			Temperature: 0.3,
			MaxTokens:   1000,
			DigestOnly:  true,
			Instruction: "Based on all the information provided about {company}, write ONLY a brief Conclusion section for an equity research report that summarizes the investment thesis:",
		},
	}
}

// LoadPhases reads a YAML phase table that replaces the default one.
func LoadPhases(path string) ([]PhaseSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read phase table: %w", err)
	}
	var file struct {
		Phases []PhaseSpec `yaml:"phases"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse phase table: %w", err)
	}
	if len(file.Phases) == 0 {
		return nil, fmt.Errorf("phase table %s declares no phases", path)
	}
	for i := range file.Phases {
		p := &file.Phases[i]
		if p.Name == "" || p.Heading == "" {
			return nil, fmt.Errorf("phase %d: name and heading are required", i)
		}
		if p.Level <= 0 || p.Level > 6 {
			p.Level = 1
		}
		if p.MaxTokens <= 0 {
			p.MaxTokens = 1500
		}
	}
	return file.Phases, nil
}
