package client

import (
	"context"
	"net/http"

	"github.com/paperscan/paperscan/pkg/ledger"
)

type RunService struct {
	Options []RequestOption
}

func NewRunService(opts ...RequestOption) RunService {
	return RunService{
		Options: opts,
	}
}

type RunList struct {
	Runs []ledger.Summary `json:"runs"`

	TotalTokens int     `json:"total_tokens"`
	TotalCost   float64 `json:"total_cost_usd"`
}

// List returns the runs the server has committed since it started.
func (r *RunService) List(ctx context.Context, opts ...RequestOption) (*RunList, error) {
	cfg := newRequestConfig(append(r.Options, opts...)...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL+"/v1/runs", nil)

	if err != nil {
		return nil, err
	}

	var list RunList

	if err := cfg.do(req, &list); err != nil {
		return nil, err
	}

	return &list, nil
}
