// Command mambac compiles source-dialect files into Python.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mambac/mambac"
	"github.com/mambac/mambac/diag"
)

const sourceExt = ".mamba"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("mambac", flag.ContinueOnError)
	input := fs.String("i", "", "input file, directory, or glob pattern")
	output := fs.String("o", "", "output file or directory (default: target/ next to the input)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "mambac: -i is required")
		return 2
	}

	paths, err := discoverSources(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mambac: %v\n", err)
		return 2
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "mambac: no %s files found under %q\n", sourceExt, *input)
		return 2
	}

	sources := make([]mambac.Source, len(paths))
	for i, p := range paths {
		text, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "mambac: reading %q: %v\n", p, err)
			return 2
		}
		sources[i] = mambac.Source{Path: p, Text: text}
	}

	c := &mambac.Compiler{}
	outputs, err := c.CompileAll(context.Background(), sources)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mambac: %v\n", err)
		return 2
	}

	failed := false
	for _, out := range outputs {
		for _, d := range out.Diagnostics {
			fmt.Fprintln(os.Stderr, d.Error())
			if d.Level == diag.Error {
				failed = true
			}
		}
		if out.Python == "" {
			continue
		}
		dest := destPath(out.Path, *input, *output)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "mambac: creating %q: %v\n", filepath.Dir(dest), err)
			failed = true
			continue
		}
		if err := os.WriteFile(dest, []byte(out.Python), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "mambac: writing %q: %v\n", dest, err)
			failed = true
		}
	}

	if failed {
		return 1
	}
	return 0
}

// discoverSources expands input into a sorted list of source-dialect file
// paths: a literal file, every sourceExt file under a directory, or the
// matches of a doublestar glob pattern.
func discoverSources(input string) ([]string, error) {
	if doublestar.ValidatePattern(input) && strings.ContainsAny(input, "*?[") {
		return doublestar.Glob(os.DirFS("."), input)
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	var paths []string
	err = filepath.WalkDir(input, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(p) == sourceExt {
			paths = append(paths, p)
		}
		return nil
	})
	return paths, err
}

// destPath computes where a compiled file is written: under -o if given,
// otherwise a target/ directory next to the input root, mirroring the
// source's path relative to that root.
func destPath(srcPath, inputRoot, outputRoot string) string {
	rel := srcPath
	if base, err := filepath.Rel(inputRoot, srcPath); err == nil && base != "." && !strings.HasPrefix(base, "..") {
		rel = base
	} else {
		rel = filepath.Base(srcPath)
	}
	rel = strings.TrimSuffix(rel, sourceExt) + ".py"

	if outputRoot == "" {
		return filepath.Join(filepath.Dir(inputRoot), "target", rel)
	}
	// A literal .py path names a single output file; anything else is
	// treated as a directory root the relative path is joined onto.
	if filepath.Ext(outputRoot) == ".py" {
		return outputRoot
	}
	return filepath.Join(outputRoot, rel)
}
