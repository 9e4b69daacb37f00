package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/paperscan/paperscan/pkg/document"
)

var _ Renderer = (*Poppler)(nil)

// DefaultDPI is the resolution pages are rendered at for the oracle.
const DefaultDPI = 150

// Poppler renders pages with the pdftoppm binary.
type Poppler struct {
	binary string
	dpi    int
}

// NewPoppler looks up pdftoppm on PATH.
func NewPoppler(dpi int) (*Poppler, error) {
	binary, err := exec.LookPath("pdftoppm")

	if err != nil {
		return nil, fmt.Errorf("pdftoppm not available: %w", err)
	}

	if dpi <= 0 {
		dpi = DefaultDPI
	}

	return &Poppler{
		binary: binary,
		dpi:    dpi,
	}, nil
}

func (p *Poppler) Render(ctx context.Context, path string, page int) (*document.Image, error) {
	dir, err := os.MkdirTemp("", "paperscan-render-")

	if err != nil {
		return nil, err
	}

	defer os.RemoveAll(dir)

	root := filepath.Join(dir, "page")
	n := strconv.Itoa(page)

	cmd := exec.CommandContext(ctx, p.binary, "-f", n, "-l", n, "-r", strconv.Itoa(p.dpi), "-png", "-singlefile", path, root)

	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, output)
	}

	data, err := os.ReadFile(root + ".png")

	if err != nil {
		return nil, err
	}

	return &document.Image{
		Content:     data,
		ContentType: "image/png",
	}, nil
}
