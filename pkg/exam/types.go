package exam

import (
	"strings"
)

// ResponseType is the kind of answer a question expects.
type ResponseType string

const (
	ResponseMultipleChoice ResponseType = "MULTIPLE_CHOICE"
	ResponseShortAnswer    ResponseType = "SHORT_ANSWER"
	ResponseLongAnswer     ResponseType = "LONG_ANSWER"
	ResponseWorkingArea    ResponseType = "WORKING_AREA"
	ResponseFillInBlank    ResponseType = "FILL_IN_BLANK"
	ResponseTrueFalse      ResponseType = "TRUE_FALSE"
	ResponseMatching       ResponseType = "MATCHING"
	ResponseDiagramLabel   ResponseType = "DIAGRAM_LABEL"
)

// DefaultResponseType is applied when the oracle omits the response type or
// emits a tag that is not recognized.
const DefaultResponseType = ResponseShortAnswer

var responseTypes = map[string]ResponseType{
	"MULTIPLE_CHOICE": ResponseMultipleChoice,
	"MULTIPLECHOICE":  ResponseMultipleChoice,
	"MCQ":             ResponseMultipleChoice,
	"SHORT_ANSWER":    ResponseShortAnswer,
	"SHORT":           ResponseShortAnswer,
	"LONG_ANSWER":     ResponseLongAnswer,
	"LONG":            ResponseLongAnswer,
	"ESSAY":           ResponseLongAnswer,
	"WORKING_AREA":    ResponseWorkingArea,
	"WORKING":         ResponseWorkingArea,
	"FILL_IN_BLANK":   ResponseFillInBlank,
	"FILL_IN_BLANKS":  ResponseFillInBlank,
	"TRUE_FALSE":      ResponseTrueFalse,
	"MATCHING":        ResponseMatching,
	"DIAGRAM_LABEL":   ResponseDiagramLabel,
}

// ParseResponseType maps a free-form tag onto a ResponseType. Matching is
// case-insensitive and treats spaces and hyphens as underscores. When the tag
// is empty or unknown it returns DefaultResponseType and false.
func ParseResponseType(s string) (ResponseType, bool) {
	if t, ok := responseTypes[canonicalTag(s)]; ok {
		return t, true
	}

	return DefaultResponseType, false
}

// DiagramType classifies a diagram region.
type DiagramType string

const (
	DiagramGraph           DiagramType = "GRAPH"
	DiagramGeometricFigure DiagramType = "GEOMETRIC_FIGURE"
	DiagramChart           DiagramType = "CHART"
	DiagramIllustration    DiagramType = "ILLUSTRATION"
	DiagramTable           DiagramType = "TABLE"
	DiagramCircuit         DiagramType = "CIRCUIT"
	DiagramMap             DiagramType = "MAP"
	DiagramScientific      DiagramType = "SCIENTIFIC"
	DiagramGeneric         DiagramType = "DIAGRAM"
)

// DefaultDiagramType is applied to unrecognized diagram tags.
const DefaultDiagramType = DiagramGeneric

var diagramTypes = map[string]DiagramType{
	"GRAPH":            DiagramGraph,
	"GEOMETRIC_FIGURE": DiagramGeometricFigure,
	"GEOMETRY":         DiagramGeometricFigure,
	"CHART":            DiagramChart,
	"ILLUSTRATION":     DiagramIllustration,
	"PICTURE":          DiagramIllustration,
	"TABLE":            DiagramTable,
	"CIRCUIT":          DiagramCircuit,
	"MAP":              DiagramMap,
	"SCIENTIFIC":       DiagramScientific,
	"DIAGRAM":          DiagramGeneric,
	"FIGURE":           DiagramGeneric,
}

// ParseDiagramType maps a free-form tag onto a DiagramType, returning
// DefaultDiagramType and false when the tag is not recognized.
func ParseDiagramType(s string) (DiagramType, bool) {
	if t, ok := diagramTypes[canonicalTag(s)]; ok {
		return t, true
	}

	return DefaultDiagramType, false
}

// Subject is the exam subject detected from the document.
type Subject string

const (
	SubjectMathematics Subject = "MATHEMATICS"
	SubjectScience     Subject = "SCIENCE"
	SubjectPhysics     Subject = "PHYSICS"
	SubjectChemistry   Subject = "CHEMISTRY"
	SubjectBiology     Subject = "BIOLOGY"
	SubjectEnglish     Subject = "ENGLISH"
	SubjectOther       Subject = "OTHER"
)

func canonicalTag(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)

	return s
}
