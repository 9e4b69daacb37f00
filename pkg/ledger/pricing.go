package ledger

import (
	"strings"
)

// DefaultModel is charged when a usage entry names no model.
const DefaultModel = "gemini-2.5-flash"

// Price is the USD price per one million tokens.
type Price struct {
	Input  float64 `json:"input" yaml:"input"`
	Output float64 `json:"output" yaml:"output"`
}

// Pricing maps a model name to its token price.
type Pricing map[string]Price

func DefaultPricing() Pricing {
	return Pricing{
		"gemini-2.5-flash": {Input: 0.075, Output: 0.30},
		"gemini-2.0-flash": {Input: 0.10, Output: 0.40},
		"gemini-1.5-flash": {Input: 0.075, Output: 0.30},
		"gemini-1.5-pro":   {Input: 1.25, Output: 5.00},
	}
}

// Merge returns a copy of p with the entries of other added or replaced.
func (p Pricing) Merge(other Pricing) Pricing {
	result := make(Pricing, len(p)+len(other))

	for k, v := range p {
		result[k] = v
	}

	for k, v := range other {
		result[k] = v
	}

	return result
}

// Lookup returns the price of model. A versioned name such as
// "gemini-2.5-flash-001" falls back to the longest priced base name.
func (p Pricing) Lookup(model string) (Price, bool) {
	if price, ok := p[model]; ok {
		return price, true
	}

	var (
		best  string
		price Price
	)

	for name, val := range p {
		if len(name) <= len(best) || !strings.HasPrefix(model, name) {
			continue
		}

		if next := model[len(name)]; next != '-' && next != '@' && next != ':' {
			continue
		}

		best, price = name, val
	}

	return price, best != ""
}

// Cost returns the price of the given token counts. Unknown models cost
// nothing.
func (p Pricing) Cost(model string, input, output int) float64 {
	price, ok := p.Lookup(model)

	if !ok {
		return 0
	}

	return float64(input)/1_000_000*price.Input + float64(output)/1_000_000*price.Output
}
