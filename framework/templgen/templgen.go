package templgen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/a-h/templ/generator"
	"github.com/a-h/templ/parser/v2"
)

// ErrStale reports generated files that no longer match their templ source.
var ErrStale = errors.New("generated templ output is stale")

type Config struct {
	Files    []string
	Paths    []string
	BasePath string
	// Check compares instead of writing.
	Check bool
}

// Run compiles every selected .templ file into its _templ.go sibling.
// FileName positions in the output are relative to BasePath.
func Run(cfg Config) error {
	basePath := strings.TrimSpace(cfg.BasePath)
	if basePath == "" {
		basePath = "."
	}

	resolvedFiles, err := collectFiles(cfg.Files, cfg.Paths)
	if err != nil {
		return err
	}
	if len(resolvedFiles) == 0 {
		return errors.New("no templ files found")
	}

	baseAbs, err := filepath.Abs(basePath)
	if err != nil {
		return fmt.Errorf("resolve base path %q: %w", basePath, err)
	}

	var stale []string
	for _, fileName := range resolvedFiles {
		target, generated, err := generateFile(fileName, baseAbs)
		if err != nil {
			return err
		}

		if cfg.Check {
			existing, readErr := os.ReadFile(target)
			if readErr != nil || !bytes.Equal(existing, generated) {
				stale = append(stale, target)
			}
			continue
		}

		if err := os.WriteFile(target, generated, 0o644); err != nil {
			return fmt.Errorf("write %q: %w", target, err)
		}
	}

	if len(stale) > 0 {
		return fmt.Errorf("%w: %s", ErrStale, strings.Join(stale, ", "))
	}
	return nil
}

func collectFiles(files []string, paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	all := make([]string, 0, len(files)+8)
	add := func(absPath string) {
		if _, ok := seen[absPath]; ok {
			return
		}
		seen[absPath] = struct{}{}
		all = append(all, absPath)
	}

	for _, fileName := range files {
		absPath, err := filepath.Abs(fileName)
		if err != nil {
			return nil, fmt.Errorf("resolve file %q: %w", fileName, err)
		}
		if filepath.Ext(absPath) != ".templ" {
			return nil, fmt.Errorf("file %q must have .templ extension", fileName)
		}
		add(absPath)
	}

	for _, root := range paths {
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", root, err)
		}
		walkErr := filepath.WalkDir(rootAbs, func(filePath string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				// Same rule as the go tool: _ and . directories are not packages.
				if filePath != rootAbs && ignoredDir(entry.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(filePath) == ".templ" {
				add(filePath)
			}
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk path %q: %w", root, walkErr)
		}
	}

	sort.Strings(all)
	return all, nil
}

func ignoredDir(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "testdata"
}

func generateFile(fileName string, baseAbs string) (string, []byte, error) {
	t, err := parser.Parse(fileName)
	if err != nil {
		return "", nil, fmt.Errorf("parse %q: %w", fileName, err)
	}

	relFileName, err := filepath.Rel(baseAbs, fileName)
	if err != nil {
		return "", nil, fmt.Errorf("compute relative filename for %q: %w", fileName, err)
	}

	var output bytes.Buffer
	if _, err := generator.Generate(t, &output, generator.WithFileName(filepath.ToSlash(relFileName))); err != nil {
		return "", nil, fmt.Errorf("generate %q: %w", fileName, err)
	}

	formatted, err := format.Source(output.Bytes())
	if err != nil {
		return "", nil, fmt.Errorf("format generated output for %q: %w", fileName, err)
	}

	return strings.TrimSuffix(fileName, ".templ") + "_templ.go", formatted, nil
}
