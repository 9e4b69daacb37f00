package document

import (
	"context"
	"errors"

	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/provider"
)

type Parser interface {
	Parse(ctx context.Context, path string) ([]Page, error)
}

var (
	ErrNotFound    = errors.New("document not found")
	ErrUnsupported = errors.New("unsupported document")
)

type Image struct {
	Content     []byte
	ContentType string
}

// EmbeddedImage is an image object found on a page. Box is nil when the
// placement on the page is unknown.
type EmbeddedImage struct {
	Name string

	Width  int
	Height int

	Box *exam.BoundingBox
}

// Page is one page of a source document. Number is 1-based.
type Page struct {
	Number int

	Text  string
	Image *Image

	Width  float64
	Height float64

	Images []EmbeddedImage
}

// Preview returns at most n characters of the page text.
func (p Page) Preview(n int) string {
	runes := []rune(p.Text)

	if len(runes) <= n {
		return p.Text
	}

	return string(runes[:n])
}

// File returns the rendered page image as an oracle attachment, or nil.
func (p Page) File() *provider.File {
	if p.Image == nil || len(p.Image.Content) == 0 {
		return nil
	}

	return &provider.File{
		Name: "page.png",

		Content:     p.Image.Content,
		ContentType: p.Image.ContentType,
	}
}
