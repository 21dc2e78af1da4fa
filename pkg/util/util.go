package util

import (
	"fmt"
	"io"
	"strings"

	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/token"
)

// SourceFileRecord tracks the name and content of a single source file.
type SourceFileRecord struct {
	Name    string
	Content []rune
}

// Reporter prints diagnostics against the registered source files.
type Reporter struct {
	out         io.Writer
	cfg         *config.Config
	sourceFiles []SourceFileRecord
	errors      int
	warnings    int
}

func NewReporter(out io.Writer, cfg *config.Config) *Reporter {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Reporter{out: out, cfg: cfg}
}

// SetSourceFiles stores the source code for all input files for rich error messages
func (r *Reporter) SetSourceFiles(files []SourceFileRecord) { r.sourceFiles = files }

// AddSourceFile registers one more file and returns its index.
func (r *Reporter) AddSourceFile(name string, content []rune) int {
	r.sourceFiles = append(r.sourceFiles, SourceFileRecord{Name: name, Content: content})
	return len(r.sourceFiles) - 1
}

// FileIndex returns the index of the file registered under name, or -1.
func (r *Reporter) FileIndex(name string) int {
	for i, f := range r.sourceFiles {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (r *Reporter) ErrorCount() int   { return r.errors }
func (r *Reporter) WarningCount() int { return r.warnings }

// findFileAndLine converts a global token to a file-specific location
func (r *Reporter) findFileAndLine(tok token.Token) (filename string, line, col int) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(r.sourceFiles) {
		return "unknown", tok.Line, tok.Column
	}
	return r.sourceFiles[tok.FileIndex].Name, tok.Line, tok.Column
}

// printErrorLine prints the source line and a caret indicating the error position
func (r *Reporter) printErrorLine(tok token.Token) {
	if tok.FileIndex < 0 || tok.FileIndex >= len(r.sourceFiles) || tok.Line == 0 {
		return
	}

	content := r.sourceFiles[tok.FileIndex].Content
	lineStart, lineNum := 0, tok.Line
	for i, c := range content {
		if lineNum <= 1 {
			break
		}
		if c == '\n' {
			lineNum--
			lineStart = i + 1
		}
	}
	lineEnd := len(content)
	for i := lineStart; i < len(content); i++ {
		if content[i] == '\n' {
			lineEnd = i
			break
		}
	}

	fmt.Fprintf(r.out, "  %s\n", string(content[lineStart:lineEnd]))
	fmt.Fprintf(r.out, "  %s\033[32m^", strings.Repeat(" ", max(tok.Column-1, 0)))
	if tok.Len > 1 {
		fmt.Fprint(r.out, strings.Repeat("~", tok.Len-1))
	}
	fmt.Fprintln(r.out, "\033[0m")
}

// Error prints a formatted error message located at tok.
func (r *Reporter) Error(tok token.Token, format string, args ...interface{}) {
	r.errors++
	filename, line, col := r.findFileAndLine(tok)
	fmt.Fprintf(r.out, "%s:%d:%d: \033[31merror:\033[0m ", filename, line, col)
	fmt.Fprintf(r.out, format, args...)
	fmt.Fprintln(r.out)
	r.printErrorLine(tok)
}

// Warn prints a formatted warning message if the corresponding warning is enabled
func (r *Reporter) Warn(wt config.Warning, tok token.Token, format string, args ...interface{}) {
	if !r.cfg.IsWarningEnabled(wt) {
		return
	}
	r.warnings++
	filename, line, col := r.findFileAndLine(tok)
	fmt.Fprintf(r.out, "%s:%d:%d: \033[33mwarning:\033[0m ", filename, line, col)
	fmt.Fprintf(r.out, format, args...)
	fmt.Fprintf(r.out, " [-W%s]\n", r.cfg.Warnings[wt].Name)
	r.printErrorLine(tok)
}
