package util

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/token"
)

func TestErrorWithCaret(t *testing.T) {
	var buf bytes.Buffer
	rep := NewReporter(&buf, nil)
	idx := rep.AddSourceFile("main.c", []rune("int x;\nint yy\n"))

	rep.Error(token.Token{FileIndex: idx, Line: 2, Column: 5, Len: 2}, "'%s' expected", ";")

	want := "main.c:2:5: \033[31merror:\033[0m ';' expected\n" +
		"  int yy\n" +
		"      \033[32m^~\033[0m\n"
	if buf.String() != want {
		t.Errorf("got\n%q\nwant\n%q", buf.String(), want)
	}
	if rep.ErrorCount() != 1 {
		t.Errorf("ErrorCount = %d", rep.ErrorCount())
	}
}

func TestUnknownFile(t *testing.T) {
	var buf bytes.Buffer
	rep := NewReporter(&buf, nil)
	rep.Error(token.Token{FileIndex: -1}, "no input files")
	if !strings.HasPrefix(buf.String(), "unknown:0:0: ") {
		t.Errorf("got %q", buf.String())
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("expected no source excerpt, got %q", buf.String())
	}
}

func TestWarningsAreGated(t *testing.T) {
	cfg := config.NewConfig()
	var buf bytes.Buffer
	rep := NewReporter(&buf, cfg)
	rep.SetSourceFiles([]SourceFileRecord{{Name: "a.ir", Content: []rune("alloca r0, 3\n")}})
	tok := token.Token{FileIndex: 0, Line: 1, Column: 1, Len: 1}

	rep.Warn(config.WarnPedantic, tok, "off by default")
	if buf.Len() != 0 || rep.WarningCount() != 0 {
		t.Fatalf("disabled warning printed: %q", buf.String())
	}

	rep.Warn(config.WarnUnalignedAlloca, tok, "misaligned")
	out := buf.String()
	if !strings.HasPrefix(out, "a.ir:1:1: \033[33mwarning:\033[0m misaligned [-Wunaligned-alloca]\n") {
		t.Errorf("got %q", out)
	}
	if rep.WarningCount() != 1 {
		t.Errorf("WarningCount = %d", rep.WarningCount())
	}
}

func TestFileIndex(t *testing.T) {
	rep := NewReporter(&bytes.Buffer{}, nil)
	rep.AddSourceFile("a.c", nil)
	rep.AddSourceFile("b.ir", nil)
	if got := rep.FileIndex("b.ir"); got != 1 {
		t.Errorf("FileIndex(b.ir) = %d", got)
	}
	if got := rep.FileIndex("c.c"); got != -1 {
		t.Errorf("FileIndex(c.c) = %d", got)
	}
}
