package api

import (
	"errors"
	"net/http"
)

func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	if h.book == nil {
		h.writeError(w, http.StatusNotFound, errors.New("run ledger not available"))
		return
	}

	tokens, cost := h.book.Totals()

	h.writeJson(w, RunsResponse{
		Runs: h.book.Runs(),

		TotalTokens: tokens,
		TotalCost:   cost,
	})
}
