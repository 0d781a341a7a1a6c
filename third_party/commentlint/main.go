// Package main runs the commentlint CLI.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// pkgInfo is the subset of `go list -json` output the linter reads.
type pkgInfo struct {
	Dir         string
	GoFiles     []string
	TestGoFiles []string
}

// finding is one reported problem.
type finding struct {
	pos token.Position
	msg string
}

// lintConfig mirrors the parts of .golangci.yml the linter honours.
type lintConfig struct {
	Issues struct {
		MaxIssuesPerLinter int      `yaml:"max-issues-per-linter"`
		ExcludeDirs        []string `yaml:"exclude-dirs"`
		ExcludeFiles       []string `yaml:"exclude-files"`
	} `yaml:"issues"`
	Commentlint struct {
		PackageDoc bool `yaml:"package-doc"`
	} `yaml:"commentlint"`
}

// linter checks parsed files against one configuration.
type linter struct {
	fset       *token.FileSet
	root       string
	dirs       []string
	patterns   []*regexp.Regexp
	packageDoc bool
}

// main is the entrypoint for the comment linter CLI.
func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run lints the packages named by args and returns the process exit code.
func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("commentlint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", ".golangci.yml", "Path to the golangci-lint style config")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: commentlint [-config FILE] [packages]")
		fmt.Fprintln(stderr, "Reports functions without a doc comment. Packages default to ./...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	patterns := fs.Args()
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg, err := readConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "commentlint: %v\n", err)
		return 1
	}
	l, err := newLinter(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "commentlint: %v\n", err)
		return 1
	}
	pkgs, err := goList(patterns)
	if err != nil {
		fmt.Fprintf(stderr, "commentlint: %v\n", err)
		return 1
	}

	var findings []finding
	for _, pkg := range pkgs {
		got, err := l.lintPackage(pkg)
		if err != nil {
			fmt.Fprintf(stderr, "commentlint: %v\n", err)
			return 1
		}
		findings = append(findings, got...)
	}
	return l.report(stderr, findings, cfg.Issues.MaxIssuesPerLinter)
}

// readConfig decodes path. A missing file leaves every option off.
func readConfig(path string) (lintConfig, error) {
	var cfg lintConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// newLinter compiles the exclusions of cfg relative to the working directory.
func newLinter(cfg lintConfig) (*linter, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	l := &linter{
		fset:       token.NewFileSet(),
		root:       root,
		packageDoc: cfg.Commentlint.PackageDoc,
	}
	for _, d := range cfg.Issues.ExcludeDirs {
		d = filepath.ToSlash(strings.TrimPrefix(strings.TrimSpace(d), "./"))
		if d != "" {
			l.dirs = append(l.dirs, strings.TrimSuffix(d, "/"))
		}
	}
	for _, p := range cfg.Issues.ExcludeFiles {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		rx, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("exclude-files %q: %w", p, err)
		}
		l.patterns = append(l.patterns, rx)
	}
	return l, nil
}

// goList returns package metadata from `go list -json`.
func goList(patterns []string) ([]pkgInfo, error) {
	cmd := exec.Command("go", append([]string{"list", "-json"}, patterns...)...)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("go list: %w", err)
	}
	var pkgs []pkgInfo
	dec := json.NewDecoder(bytes.NewReader(out))
	for dec.More() {
		var p pkgInfo
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode go list output: %w", err)
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

// lintPackage lints every source and test file of pkg.
func (l *linter) lintPackage(pkg pkgInfo) ([]finding, error) {
	var out []finding
	for _, group := range []struct {
		files  []string
		isTest bool
	}{{pkg.GoFiles, false}, {pkg.TestGoFiles, true}} {
		for _, name := range group.files {
			path := filepath.Join(pkg.Dir, name)
			if l.excluded(l.display(path)) {
				continue
			}
			f, err := parser.ParseFile(l.fset, path, nil, parser.ParseComments)
			if err != nil {
				return nil, err
			}
			out = append(out, l.lintFile(f, group.isTest)...)
		}
	}
	return out, nil
}

// excluded reports whether a slash-separated relative path is skipped.
func (l *linter) excluded(rel string) bool {
	for _, d := range l.dirs {
		if rel == d || strings.HasPrefix(rel, d+"/") {
			return true
		}
	}
	for _, rx := range l.patterns {
		if rx.MatchString(rel) {
			return true
		}
	}
	return false
}

// lintFile reports functions without doc comments and, outside tests when
// enabled, a missing package comment. Generated files are skipped.
func (l *linter) lintFile(f *ast.File, isTest bool) []finding {
	if ast.IsGenerated(f) {
		return nil
	}
	var out []finding
	if l.packageDoc && !isTest && !hasText(f.Doc) {
		out = append(out, finding{
			pos: l.fset.Position(f.Package),
			msg: fmt.Sprintf("missing package comment for %q", f.Name.Name),
		})
	}
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Body == nil || hasText(fn.Doc) {
			continue
		}
		out = append(out, finding{
			pos: l.fset.Position(fn.Pos()),
			msg: fmt.Sprintf("missing doc comment for function %q", fn.Name.Name),
		})
	}
	return out
}

// hasText reports whether a comment group carries any text.
func hasText(cg *ast.CommentGroup) bool {
	return cg != nil && strings.TrimSpace(cg.Text()) != ""
}

// display returns path relative to the linter root in slash form.
func (l *linter) display(path string) string {
	if rel, err := filepath.Rel(l.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// report prints up to limit findings and returns the exit code.
func (l *linter) report(w io.Writer, findings []finding, limit int) int {
	if len(findings) == 0 {
		return 0
	}
	shown := findings
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, f := range shown {
		fmt.Fprintf(w, "%s:%d:%d: %s\n", l.display(f.pos.Filename), f.pos.Line, f.pos.Column, f.msg)
	}
	if len(shown) < len(findings) {
		fmt.Fprintf(w, "commentlint: %d more issues not shown\n", len(findings)-len(shown))
	}
	return 1
}
