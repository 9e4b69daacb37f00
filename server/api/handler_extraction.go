package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/paperscan/paperscan/pkg/document"
)

func (h *Handler) handleExtraction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	file, header, err := r.FormFile("file")

	if err != nil {
		var maxErr *http.MaxBytesError

		if errors.As(err, &maxErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}

		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	defer file.Close()

	name := filepath.Base(header.Filename)

	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		h.writeError(w, http.StatusBadRequest, document.ErrUnsupported)
		return
	}

	dir, err := os.MkdirTemp("", "paperscan-")

	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	defer os.RemoveAll(dir)

	path := filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+".pdf")

	if err := save(path, file); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	paper, err := h.extractor.Process(r.Context(), path)

	if err != nil {
		code := http.StatusInternalServerError

		if errors.Is(err, document.ErrUnsupported) {
			code = http.StatusUnprocessableEntity
		}

		h.writeError(w, code, err)
		return
	}

	h.writeJson(w, paper)
}

func save(path string, r io.Reader) error {
	f, err := os.Create(path)

	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
