package templgen

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const helloTempl = "package sample\n\ntempl Hello(name string) {\n\t<p>Hello { name }</p>\n}\n"

func TestRunGeneratesOutputFromPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "views", "hello.templ"), helloTempl)

	if err := Run(Config{Paths: []string{root}, BasePath: root}); err != nil {
		t.Fatalf("run templgen: %v", err)
	}

	generated, err := os.ReadFile(filepath.Join(root, "views", "hello_templ.go"))
	if err != nil {
		t.Fatalf("read generated file: %v", err)
	}
	if !strings.Contains(string(generated), "FileName: `views/hello.templ`") {
		t.Fatalf("expected base-relative file name in output, got:\n%s", generated)
	}
	if !strings.HasPrefix(string(generated), "// Code generated by templ - DO NOT EDIT.") {
		t.Fatalf("expected generated header, got:\n%s", generated)
	}
}

func TestRunSkipsUnderscoreAndDotDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "hello.templ"), helloTempl)
	writeTestFile(t, filepath.Join(root, "_reference", "broken.templ"), "not a templ file")
	writeTestFile(t, filepath.Join(root, ".cache", "broken.templ"), "not a templ file")

	if err := Run(Config{Paths: []string{root}, BasePath: root}); err != nil {
		t.Fatalf("run templgen: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "_reference", "broken_templ.go")); !os.IsNotExist(err) {
		t.Fatalf("expected underscore directory to be skipped, stat err: %v", err)
	}
}

func TestRunCheckReportsStaleOutput(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	source := filepath.Join(root, "hello.templ")
	writeTestFile(t, source, helloTempl)

	cfg := Config{Files: []string{source}, BasePath: root, Check: true}
	if err := Run(cfg); !errors.Is(err, ErrStale) {
		t.Fatalf("expected stale error before generation, got %v", err)
	}

	cfg.Check = false
	if err := Run(cfg); err != nil {
		t.Fatalf("generate: %v", err)
	}

	cfg.Check = true
	if err := Run(cfg); err != nil {
		t.Fatalf("expected fresh output, got %v", err)
	}

	writeTestFile(t, source, strings.Replace(helloTempl, "Hello", "Hi", 2))
	if err := Run(cfg); !errors.Is(err, ErrStale) {
		t.Fatalf("expected stale error after edit, got %v", err)
	}
}

func TestRunRejectsNonTemplFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	plain := filepath.Join(root, "hello.go")
	writeTestFile(t, plain, "package sample\n")

	if err := Run(Config{Files: []string{plain}, BasePath: root}); err == nil {
		t.Fatal("expected extension error")
	}
}

func TestRunReturnsErrorForEmptySelection(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := Run(Config{BasePath: root}); err == nil {
		t.Fatal("expected no templ files error")
	}
}

func writeTestFile(t *testing.T, filePath string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		t.Fatalf("mkdir %q: %v", filepath.Dir(filePath), err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		t.Fatalf("write %q: %v", filePath, err)
	}
}
