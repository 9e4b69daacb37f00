package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// expand resolves file, directory and glob arguments into a sorted list of
// PDF paths without duplicates.
func expand(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		if strings.ContainsAny(arg, "*?[") {
			matches, err := filepath.Glob(arg)

			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
			}

			files = append(files, matches...)
			continue
		}

		info, err := os.Stat(arg)

		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "warning: %s does not exist\n", arg)
				continue
			}

			return nil, err
		}

		if info.IsDir() {
			entries, err := os.ReadDir(arg)

			if err != nil {
				return nil, err
			}

			for _, e := range entries {
				if !e.IsDir() {
					files = append(files, filepath.Join(arg, e.Name()))
				}
			}

			continue
		}

		files = append(files, arg)
	}

	files = slices.DeleteFunc(files, func(path string) bool {
		return !strings.EqualFold(filepath.Ext(path), ".pdf")
	})

	slices.Sort(files)

	return slices.Compact(files), nil
}
