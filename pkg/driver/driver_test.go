package driver

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/util"
)

type golden struct {
	Output      string `json:"output"`
	Diagnostics string `json:"diagnostics"`
	Failed      bool   `json:"failed"`
}

func compile(t *testing.T, cfg *config.Config, opts Options, name, src string) (out, diag string, err error) {
	t.Helper()
	if cfg == nil {
		cfg = config.NewConfig()
	}
	var outBuf, diagBuf bytes.Buffer
	s, err := NewSession(cfg, util.NewReporter(&diagBuf, cfg), &outBuf, opts)
	if err != nil {
		t.Fatal(err)
	}
	err = s.CompileFile(name, []byte(src))
	return outBuf.String(), diagBuf.String(), err
}

func TestGoldenFiles(t *testing.T) {
	files, _ := filepath.Glob("../../testdata/*.c")
	irFiles, _ := filepath.Glob("../../testdata/*.ir")
	files = append(files, irFiles...)
	if len(files) == 0 {
		t.Fatal("no testdata")
	}
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			src, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}
			data, err := os.ReadFile(filepath.Join(filepath.Dir(file), "."+filepath.Base(file)+".json"))
			if err != nil {
				t.Fatal(err)
			}
			var want golden
			if err := json.Unmarshal(data, &want); err != nil {
				t.Fatal(err)
			}

			out, diag, err := compile(t, nil, Options{DumpAST: true}, filepath.Base(file), string(src))
			got := golden{Output: out, Diagnostics: diag, Failed: err != nil}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrorIsReported(t *testing.T) {
	out, diag, err := compile(t, nil, Options{DumpAST: true}, "bad.c", "int main() {\n  return 1\n}\n")
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("got %v, want ErrFailed", err)
	}
	if out != "" {
		t.Errorf("output on failure: %q", out)
	}
	if !strings.HasPrefix(diag, "bad.c:3:1: ") || !strings.Contains(diag, "';' expected, but got '}'") {
		t.Errorf("diagnostic = %q", diag)
	}
}

func TestLexErrorIsReported(t *testing.T) {
	_, diag, err := compile(t, nil, Options{}, "bad.c", "int x = 1 | 2;")
	if !errors.Is(err, ErrFailed) || !strings.HasPrefix(diag, "bad.c:1:11: ") {
		t.Errorf("err=%v diag=%q", err, diag)
	}
}

func TestCodegenErrorIsReported(t *testing.T) {
	_, diag, err := compile(t, nil, Options{}, "regs.ir", "func f\n  imm r0, 1\n  imm r9, 2\n")
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("got %v", err)
	}
	if !strings.HasPrefix(diag, "regs.ir:3:1: ") || !strings.Contains(diag, "r9") {
		t.Errorf("diagnostic = %q", diag)
	}
}

func TestIRSyntaxErrorIsReported(t *testing.T) {
	_, diag, err := compile(t, nil, Options{}, "bad.ir", "func f\n  jmp r0\n")
	if !errors.Is(err, ErrFailed) || !strings.HasPrefix(diag, "bad.ir:2:1: ") {
		t.Errorf("err=%v diag=%q", err, diag)
	}
}

func TestCheckOnly(t *testing.T) {
	out, diag, err := compile(t, nil, Options{}, "ok.c", "int main() { return 0; }")
	if err != nil || out != "" || diag != "" {
		t.Errorf("out=%q diag=%q err=%v", out, diag, err)
	}
}

func TestDumpIR(t *testing.T) {
	src := "func main\n  imm r0, 5 # five\n  ret r0\n"
	out, _, err := compile(t, nil, Options{DumpIR: true}, "m.ir", src)
	if err != nil {
		t.Fatal(err)
	}
	if out != "func main\n  imm r0, 5\n  ret r0\n" {
		t.Errorf("x86 dump = %q", out)
	}

	cfg := config.NewConfig()
	if err := cfg.SetTarget("linux", "amd64", "qbe", ""); err != nil {
		t.Fatal(err)
	}
	out, _, err = compile(t, cfg, Options{DumpIR: true}, "m.ir", src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "export function l $main() {\n") {
		t.Errorf("qbe dump = %q", out)
	}
}
