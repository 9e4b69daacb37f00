package pipeline

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/paperscan/paperscan/pkg/document"
	"github.com/paperscan/paperscan/pkg/exam"
)

var subjects = []struct {
	keyword string
	subject exam.Subject
}{
	{"math", exam.SubjectMathematics},
	{"science", exam.SubjectScience},
	{"physics", exam.SubjectPhysics},
	{"chemistry", exam.SubjectChemistry},
	{"biology", exam.SubjectBiology},
	{"english", exam.SubjectEnglish},
}

var examTypes = []struct {
	keyword string
	name    string
}{
	{"sa1", "SA1"},
	{"sa2", "SA2"},
	{"prelim", "Preliminary Exam"},
	{"mid-year", "Mid-Year"},
	{"final", "Final Exam"},
	{"mock", "Mock Exam"},
}

var (
	yearPattern = regexp.MustCompile(`20\d{2}`)

	gradePatterns = []struct {
		pattern *regexp.Regexp
		prefix  string
	}{
		{regexp.MustCompile(`p[1-6]`), "P"},
		{regexp.MustCompile(`primary\s*[1-6]`), "P"},
		{regexp.MustCompile(`sec(?:ondary)?\s*[1-5]`), "S"},
	}

	schoolPattern = regexp.MustCompile(`(?i)[-_]([A-Za-z\s]+)(?:primary|school)?\.pdf`)
)

// DetectMetadata derives paper metadata from the file name and the text of
// the first page.
func DetectMetadata(path string, first *document.Page) exam.Metadata {
	filename := filepath.Base(path)
	lower := strings.ToLower(filename)

	metadata := exam.NewMetadata(filename)

	var text string

	if first != nil {
		text = first.Preview(500)
	}

	metadata.Subject = detectSubject(lower + " " + strings.ToLower(text))

	if m := yearPattern.FindString(filename); m != "" {
		metadata.Year, _ = strconv.Atoi(m)
	}

	for _, g := range gradePatterns {
		if m := g.pattern.FindString(lower); m != "" {
			metadata.GradeLevel = g.prefix + m[len(m)-1:]
			break
		}
	}

	for _, t := range examTypes {
		if strings.Contains(lower, t.keyword) {
			metadata.ExamType = t.name
			break
		}
	}

	if m := schoolPattern.FindStringSubmatch(filename); m != nil {
		metadata.School = strings.TrimSpace(m[1])
	}

	return metadata
}

func detectSubject(text string) exam.Subject {
	for _, s := range subjects {
		if strings.Contains(text, s.keyword) {
			return s.subject
		}
	}

	return exam.SubjectOther
}
