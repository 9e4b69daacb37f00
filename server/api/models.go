package api

import (
	"github.com/paperscan/paperscan/pkg/ledger"
)

type ErrorResponse struct {
	Error Error `json:"error"`
}

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type RunsResponse struct {
	Runs []ledger.Summary `json:"runs"`

	TotalTokens int     `json:"total_tokens"`
	TotalCost   float64 `json:"total_cost_usd"`
}
