package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/xplshn/rcc/pkg/cli"
	"github.com/xplshn/rcc/pkg/config"
	"github.com/xplshn/rcc/pkg/driver"
	"github.com/xplshn/rcc/pkg/token"
	"github.com/xplshn/rcc/pkg/util"
)

func main() {
	app := cli.NewApp("rcc")
	app.Synopsis = "[options] <input.c|input.ir> ..."
	app.Description = "A small C compiler. C sources are parsed and checked; IR files are turned into x86-64 assembly or run through QBE."
	app.Authors = []string{"xplshn"}
	app.Repository = "<https://github.com/xplshn/rcc>"

	var (
		outFile  string
		std      string
		backend  string
		target   string
		pedantic bool
		verbose  bool
		dumpAST  bool
		dumpIR   bool
	)

	fs := app.FlagSet
	fs.String(&outFile, "output", "o", "", "Place the output into <file> instead of stdout.", "file")
	fs.String(&backend, "backend", "b", "x86", "Select the code generator (x86, qbe).", "backend")
	fs.String(&target, "target", "t", "", "Set the QBE target ABI (defaults to the host).", "target")
	fs.String(&std, "std", "", "gnu", "Specify language standard (rcc, gnu)", "std")
	fs.Bool(&pedantic, "pedantic", "", false, "Issue all warnings demanded by the current std.")
	fs.Bool(&dumpAST, "dump-ast", "a", false, "Write the AST of C inputs.")
	fs.Bool(&dumpIR, "dump-ir", "d", false, "Write IR inputs back out (as QBE IL with -b qbe) instead of compiling them.")
	fs.Bool(&verbose, "verbose", "v", false, "Print progress to stderr.")

	cfg := config.NewConfig()
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)

	app.Action = func(inputFiles []string) error {
		rep := util.NewReporter(os.Stderr, cfg)

		// Pedantic flag affects everything else
		if pedantic {
			cfg.SetWarning(config.WarnPedantic, true)
		}
		if err := cfg.ApplyStd(std); err != nil {
			rep.Error(token.Token{FileIndex: -1}, "%v", err)
			return err
		}
		// Explicit -W/-F flags override the standard
		cfg.ApplyFlagGroups(warningFlags, featureFlags)

		if err := cfg.SetTarget(runtime.GOOS, runtime.GOARCH, backend, target); err != nil {
			rep.Error(token.Token{FileIndex: -1}, "%v", err)
			return err
		}
		if len(inputFiles) == 0 {
			rep.Error(token.Token{FileIndex: -1}, "no input files specified.")
			return driver.ErrFailed
		}

		var out io.Writer = os.Stdout
		if outFile != "" {
			f, err := os.Create(outFile)
			if err != nil {
				rep.Error(token.Token{FileIndex: -1}, "could not create '%s': %v", outFile, err)
				return err
			}
			defer f.Close()
			out = f
		}
		w := bufio.NewWriter(out)
		defer w.Flush()

		progress := func(format string, args ...interface{}) {
			if verbose {
				fmt.Fprintf(os.Stderr, format+"\n", args...)
			}
		}

		session, err := driver.NewSession(cfg, rep, w, driver.Options{DumpAST: dumpAST, DumpIR: dumpIR})
		if err != nil {
			rep.Error(token.Token{FileIndex: -1}, "%v", err)
			return err
		}

		progress("Compiling %d file(s) with the '%s' backend...", len(inputFiles), cfg.BackendName)
		for _, path := range inputFiles {
			content, err := os.ReadFile(path)
			if err != nil {
				rep.Error(token.Token{FileIndex: -1}, "could not read file '%s': %v", path, err)
				continue
			}
			progress("  %s", path)
			if err := session.CompileFile(path, content); err != nil && !errors.Is(err, driver.ErrFailed) {
				rep.Error(token.Token{FileIndex: -1}, "%s: %v", path, err)
			}
		}

		if n := rep.ErrorCount(); n > 0 {
			return fmt.Errorf("%d error(s)", n)
		}
		progress("Done!")
		return nil
	}

	if err := app.Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
