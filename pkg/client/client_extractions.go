package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/paperscan/paperscan/pkg/exam"
)

type ExtractionService struct {
	Options []RequestOption
}

func NewExtractionService(opts ...RequestOption) ExtractionService {
	return ExtractionService{
		Options: opts,
	}
}

type File struct {
	Name   string
	Reader io.Reader
}

// New uploads a PDF and returns the extracted paper.
func (r *ExtractionService) New(ctx context.Context, input File, opts ...RequestOption) (*exam.Paper, error) {
	cfg := newRequestConfig(append(r.Options, opts...)...)

	var data bytes.Buffer
	w := multipart.NewWriter(&data)

	f, err := w.CreateFormFile("file", input.Name)

	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(f, input.Reader); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL+"/v1/extractions", &data)

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", w.FormDataContentType())

	var paper exam.Paper

	if err := cfg.do(req, &paper); err != nil {
		return nil, err
	}

	return &paper, nil
}
