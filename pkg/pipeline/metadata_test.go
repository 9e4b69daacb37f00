package pipeline

import (
	"testing"

	"github.com/paperscan/paperscan/pkg/document"
	"github.com/paperscan/paperscan/pkg/exam"

	"github.com/stretchr/testify/require"
)

func TestDetectMetadata(t *testing.T) {
	tests := []struct {
		path string
		text string

		subject exam.Subject
		year    int
		grade   string
		exam    string
		school  string
	}{
		{
			path:    "/data/p6-science-sa2-2023-rosyth.pdf",
			subject: exam.SubjectScience,
			year:    2023,
			grade:   "P6",
			exam:    "SA2",
			school:  "rosyth",
		},
		{
			path:    "primary 5 prelim 2022.pdf",
			text:    "Mathematics Paper 1",
			subject: exam.SubjectMathematics,
			year:    2022,
			grade:   "P5",
			exam:    "Preliminary Exam",
		},
		{
			path:    "sec3_mid-year.pdf",
			text:    "Chemistry",
			subject: exam.SubjectChemistry,
			grade:   "S3",
			exam:    "Mid-Year",
			school:  "year",
		},
		{
			path:    "scan.pdf",
			subject: exam.SubjectOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			metadata := DetectMetadata(tt.path, &document.Page{Number: 1, Text: tt.text})

			require.Equal(t, tt.subject, metadata.Subject)
			require.Equal(t, tt.year, metadata.Year)
			require.Equal(t, tt.grade, metadata.GradeLevel)
			require.Equal(t, tt.exam, metadata.ExamType)
			require.Equal(t, tt.school, metadata.School)
			require.NotEmpty(t, metadata.ID)
		})
	}
}

func TestDetectMetadataWithoutPages(t *testing.T) {
	metadata := DetectMetadata("english-2021.pdf", nil)

	require.Equal(t, "english-2021.pdf", metadata.SourceFile)
	require.Equal(t, exam.SubjectEnglish, metadata.Subject)
	require.Equal(t, 2021, metadata.Year)
}
