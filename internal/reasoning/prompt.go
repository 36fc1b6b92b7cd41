package reasoning

import (
	"fmt"
	"strings"

	"github.com/matthewbaird/insights/internal/types"
)

// SystemPrompt fixes the response shape.
const SystemPrompt = `You are a property management analyst assessing the risk that a tenant will not renew their lease.
You will receive lease facts and a set of scored risk factors (0 = worst, 100 = best).
Respond with a single JSON object and nothing else, using exactly these fields:
{
  "turnover_risk": "low" | "medium" | "high",
  "confidence": "low" | "medium" | "high",
  "probability": number between 0 and 100,
  "timeframe": "immediate" | "short" | "medium" | "long",
  "reasoning": "two or three sentences"
}`

// Fact is one labelled lease fact.
type Fact struct {
	Label string
	Value string
}

// Request is a structured summary of one lease.
type Request struct {
	LeaseID string
	Facts   []Fact
	Factors []types.RiskFactor
}

// Prompt renders the request as the user message.
func (r Request) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lease %s\n\nFacts:\n", r.LeaseID)
	for _, f := range r.Facts {
		fmt.Fprintf(&b, "- %s: %s\n", f.Label, f.Value)
	}
	b.WriteString("\nRisk factors:\n")
	for _, f := range r.Factors {
		fmt.Fprintf(&b, "- %s: %s (score %.0f/100). %s\n", f.Name, f.RiskLevel, f.Score, f.Details)
	}
	b.WriteString("\nAssess the turnover risk for this lease.")
	return b.String()
}
