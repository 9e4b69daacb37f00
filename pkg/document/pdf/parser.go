package pdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/paperscan/paperscan/pkg/document"

	"github.com/ledongthuc/pdf"
)

var _ document.Parser = (*Parser)(nil)

// Renderer rasterizes a single 1-based page of a PDF file.
type Renderer interface {
	Render(ctx context.Context, path string, page int) (*document.Image, error)
}

type Parser struct {
	renderer Renderer
	logger   *slog.Logger
}

type Option func(*Parser)

func WithRenderer(renderer Renderer) Option {
	return func(p *Parser) {
		p.renderer = renderer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

func NewParser(options ...Option) *Parser {
	p := &Parser{
		logger: slog.Default(),
	}

	for _, option := range options {
		option(p)
	}

	return p
}

func (p *Parser) Parse(ctx context.Context, path string) ([]document.Page, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("%s: %w", path, document.ErrUnsupported)
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, document.ErrNotFound)
		}

		return nil, err
	}

	f, r, err := pdf.Open(path)

	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}

	defer f.Close()

	var pages []document.Page

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)

		if page.V.IsNull() {
			continue
		}

		result := document.Page{
			Number: i,
		}

		rect := mediaBox(page)
		result.Width, result.Height = rect.Width, rect.Height

		text, err := plainText(page)

		if err != nil {
			p.logger.Warn("failed to extract page text", "path", path, "page", i, "error", err)
		}

		result.Text = text
		result.Images = embeddedImages(page)

		if err := placeImages(page, rect, result.Images); err != nil {
			p.logger.Warn("failed to locate page images", "path", path, "page", i, "error", err)
		}

		if p.renderer != nil {
			image, err := p.renderer.Render(ctx, path, i)

			if err != nil {
				p.logger.Warn("failed to render page", "path", path, "page", i, "error", err)
			}

			result.Image = image
		}

		pages = append(pages, result)
	}

	p.logger.Debug("parsed pdf", "path", path, "pages", len(pages))

	return pages, nil
}

func plainText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()

	return page.GetPlainText(nil)
}

// mediaBox returns the page rectangle in points, defaulting to US Letter.
func mediaBox(page pdf.Page) pageRect {
	letter := pageRect{Width: 612, Height: 792}

	box := page.V.Key("MediaBox")

	if box.IsNull() {
		box = page.V.Key("Parent").Key("MediaBox")
	}

	if box.Len() != 4 {
		return letter
	}

	rect := pageRect{
		X: box.Index(0).Float64(),
		Y: box.Index(1).Float64(),

		Width:  box.Index(2).Float64() - box.Index(0).Float64(),
		Height: box.Index(3).Float64() - box.Index(1).Float64(),
	}

	if rect.Width <= 0 || rect.Height <= 0 {
		return letter
	}

	return rect
}

func embeddedImages(page pdf.Page) []document.EmbeddedImage {
	var result []document.EmbeddedImage

	objects := page.Resources().Key("XObject")

	for _, name := range objects.Keys() {
		x := objects.Key(name)

		if x.Key("Subtype").Name() != "Image" {
			continue
		}

		result = append(result, document.EmbeddedImage{
			Name: name,

			Width:  int(x.Key("Width").Int64()),
			Height: int(x.Key("Height").Int64()),
		})
	}

	return result
}

// placeImages sets the box of every image whose placement on the page can
// be derived from the content stream.
func placeImages(page pdf.Page, rect pageRect, images []document.EmbeddedImage) error {
	names := make(map[string]bool, len(images))

	for _, img := range images {
		names[img.Name] = true
	}

	boxes, err := imagePlacements(page, rect, names)

	if err != nil {
		return err
	}

	for i := range images {
		images[i].Box = boxes[images[i].Name]
	}

	return nil
}
