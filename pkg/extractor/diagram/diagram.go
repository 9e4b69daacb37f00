package diagram

import (
	"log/slog"
	"regexp"

	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/reference"
)

// DefaultConfidence is assigned to diagrams detected during question
// extraction.
const DefaultConfidence = 0.9

// RawBox is a region on the 0-1000 scale reported by the oracle.
type RawBox struct {
	X1, Y1, X2, Y2 float64
}

// Info is a diagram as described by the question extraction response.
type Info struct {
	Question    string
	Description string
	Type        string

	Box  *RawBox
	Page int

	Associated string

	Shared     bool
	SharedWith []string

	Confidence float64
}

// Detected is a validated diagram and the question it was reported for.
type Detected struct {
	*exam.Diagram

	Associated string
}

// Build converts diagram infos into diagrams. Entries without a valid box
// are dropped with a warning.
func Build(infos []Info, logger *slog.Logger) []Detected {
	if logger == nil {
		logger = slog.Default()
	}

	var result []Detected

	for _, info := range infos {
		if info.Box == nil {
			logger.Warn("diagram without bounding box", "page", info.Page, "question", info.Question)
			continue
		}

		box, err := exam.BoxFromOracle(info.Box.X1, info.Box.Y1, info.Box.X2, info.Box.Y2)

		if err != nil {
			logger.Warn("dropping diagram", "page", info.Page, "question", info.Question, "error", err)
			continue
		}

		t, ok := exam.ParseDiagramType(info.Type)

		if !ok && info.Type != "" {
			logger.Debug("unknown diagram type", "type", info.Type, "default", t)
		}

		d := exam.NewDiagram(t, box, info.Page)
		d.AltText = info.Description
		d.Description = info.Description
		d.Confidence = DefaultConfidence

		if info.Confidence > 0 {
			d.Confidence = info.Confidence
		}

		if len(info.SharedWith) > 0 {
			d.Shared = true
			d.SharedWith = append(d.SharedWith, info.SharedWith...)
		}

		d.Shared = d.Shared || info.Shared

		associated := info.Associated

		if associated == "" {
			associated = info.Question
		}

		result = append(result, Detected{
			Diagram:    d,
			Associated: associated,
		})
	}

	return result
}

var cues = []*regexp.Regexp{
	regexp.MustCompile(`(?i)see\s+(the\s+)?(figure|diagram|graph|chart|table)`),
	regexp.MustCompile(`(?i)(figure|diagram|graph|chart|table)\s*(above|below|shown|given)`),
	regexp.MustCompile(`(?i)use\s+(the\s+)?(figure|diagram|graph)`),
	regexp.MustCompile(`(?i)refer\s+to\s+(the\s+)?(figure|diagram|graph)`),
	regexp.MustCompile(`(?i)in\s+the\s+(figure|diagram|graph)`),
	regexp.MustCompile(`(?i)from\s+the\s+(figure|diagram|graph)`),
	regexp.MustCompile(`(?i)the\s+(figure|diagram|graph)\s+(shows|illustrates)`),
}

// References reports whether text points the reader at a figure.
func References(text string) bool {
	for _, re := range cues {
		if re.MatchString(text) {
			return true
		}
	}

	return false
}

// Link attaches diagrams of the given page to questions by explicit
// association, by textual cues in questions on the same page and by shared
// diagram lists. Diagrams from other pages are ignored.
func Link(diagrams []Detected, questions []*exam.Question, page int) {
	all := exam.Flatten(questions)

	for _, d := range diagrams {
		if d.Page != page {
			continue
		}

		if d.Associated != "" {
			for _, q := range all {
				if reference.Equal(q.Number, d.Associated) {
					q.AddDiagram(d.Diagram)
					break
				}
			}
		}

		for _, q := range all {
			if q.Source.Page == page && References(q.Content.Text) {
				q.AddDiagram(d.Diagram)
			}
		}

		if d.Shared {
			for _, number := range d.SharedWith {
				for _, q := range all {
					if reference.Equal(q.Number, number) {
						q.AddDiagram(d.Diagram)
					}
				}
			}
		}
	}
}
