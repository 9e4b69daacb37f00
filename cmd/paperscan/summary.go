package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/pipeline"
)

func printSummary(w io.Writer, papers []*exam.Paper, failures []pipeline.Failure, book *ledger.Book) {
	rule := strings.Repeat("=", 60)

	for _, paper := range papers {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "%s (%s)\n", paper.Metadata.SourceFile, paper.Metadata.Subject)
		fmt.Fprintln(w, rule)

		for _, q := range paper.Questions {
			answer := "-"

			if q.AnswerKey != nil {
				answer = "A"
			}

			diagrams := "-"

			if len(q.Diagrams) > 0 {
				diagrams = "D"
			}

			line := fmt.Sprintf("Q%-5s [%s%s] %s", q.Number, answer, diagrams, q.ResponseType)

			if len(q.Subparts) > 0 {
				line += fmt.Sprintf(" (%d subparts)", len(q.Subparts))
			}

			fmt.Fprintln(w, line)
		}

		m := paper.Metrics

		fmt.Fprintf(w, "questions: %d  diagrams: %d  answers merged: %d/%d  pages: %d\n",
			m.QuestionsExtracted, m.DiagramsExtracted, m.AnswersMerged, m.AnswerKeysExtracted, m.PagesProcessed)

		fmt.Fprintf(w, "tokens: %d  cost: $%.4f  time: %.1fs  errors: %d\n",
			m.TotalTokens, m.TotalCost, m.ProcessingSeconds, len(m.Errors))
	}

	for _, f := range failures {
		fmt.Fprintf(w, "FAILED %s: %v\n", f.Path, f.Err)
	}

	tokens, cost := book.Totals()

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "documents: %d ok, %d failed  total tokens: %d  total cost: $%.4f\n", len(papers), len(failures), tokens, cost)
}
