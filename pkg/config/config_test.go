package config

import (
	"testing"

	"github.com/xplshn/rcc/pkg/cli"
)

func TestDefaults(t *testing.T) {
	cfg := NewConfig()
	if cfg.StdName != "gnu" || cfg.BackendName != "x86" {
		t.Errorf("std=%q backend=%q", cfg.StdName, cfg.BackendName)
	}
	for _, ft := range []Feature{FeatExtern, FeatStmtExpr, FeatAlignof} {
		if !cfg.IsFeatureEnabled(ft) {
			t.Errorf("feature %s disabled by default", cfg.Features[ft].Name)
		}
	}
	if cfg.IsWarningEnabled(WarnPedantic) {
		t.Error("pedantic enabled by default")
	}
	if !cfg.IsWarningEnabled(WarnUnalignedAlloca) {
		t.Error("unaligned-alloca disabled by default")
	}
	if len(cfg.Features) != int(FeatCount) || len(cfg.Warnings) != int(WarnCount) {
		t.Errorf("got %d features, %d warnings", len(cfg.Features), len(cfg.Warnings))
	}
	for name, ft := range cfg.FeatureMap {
		if cfg.Features[ft].Name != name {
			t.Errorf("FeatureMap[%q] points at %q", name, cfg.Features[ft].Name)
		}
	}
}

func TestApplyStd(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.ApplyStd("rcc"); err != nil {
		t.Fatal(err)
	}
	if cfg.IsFeatureEnabled(FeatStmtExpr) {
		t.Error("stmt-expr enabled under rcc")
	}
	if !cfg.IsFeatureEnabled(FeatAlignof) || !cfg.IsFeatureEnabled(FeatExtern) {
		t.Error("rcc should keep _Alignof and extern")
	}

	cfg.SetWarning(WarnPedantic, true)
	if err := cfg.ApplyStd("rcc"); err != nil {
		t.Fatal(err)
	}
	if cfg.IsFeatureEnabled(FeatAlignof) {
		t.Error("pedantic rcc should drop _Alignof")
	}

	if err := cfg.ApplyStd("gnu"); err != nil {
		t.Fatal(err)
	}
	if !cfg.IsFeatureEnabled(FeatStmtExpr) || cfg.StdName != "gnu" {
		t.Error("gnu should enable stmt-expr")
	}
	if err := cfg.ApplyStd("c89"); err == nil {
		t.Error("unknown std accepted")
	}
}

func TestSetTarget(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.SetTarget("linux", "amd64", "x86", ""); err != nil {
		t.Fatal(err)
	}
	if cfg.BackendName != "x86" || cfg.WordSize != 8 {
		t.Errorf("backend=%q wordsize=%d", cfg.BackendName, cfg.WordSize)
	}

	if err := cfg.SetTarget("linux", "amd64", "qbe", "arm64"); err != nil {
		t.Fatal(err)
	}
	if cfg.BackendName != "qbe" || cfg.BackendTarget != "arm64" {
		t.Errorf("backend=%q target=%q", cfg.BackendName, cfg.BackendTarget)
	}

	if err := cfg.SetTarget("linux", "amd64", "qbe", ""); err != nil {
		t.Fatal(err)
	}
	if cfg.BackendTarget != "amd64_sysv" {
		t.Errorf("default linux/amd64 QBE target = %q, want amd64_sysv", cfg.BackendTarget)
	}

	if err := cfg.SetTarget("linux", "amd64", "qbe", "pdp11"); err == nil {
		t.Error("unknown QBE target accepted")
	}
	if err := cfg.SetTarget("linux", "amd64", "llvm", ""); err == nil {
		t.Error("unknown backend accepted")
	}
}

func TestProcessFlagString(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.ProcessFlagString("-Wpedantic -Fno-stmt-expr -Wno-unaligned-alloca"); err != nil {
		t.Fatal(err)
	}
	if !cfg.IsWarningEnabled(WarnPedantic) || cfg.IsWarningEnabled(WarnUnalignedAlloca) {
		t.Error("warning flags not applied")
	}
	if cfg.IsFeatureEnabled(FeatStmtExpr) {
		t.Error("feature flag not applied")
	}

	cfg = NewConfig()
	cfg.SetWarning(WarnUnalignedAlloca, false)
	if err := cfg.ProcessFlagString("-Wall"); err != nil {
		t.Fatal(err)
	}
	if !cfg.IsWarningEnabled(WarnUnalignedAlloca) || cfg.IsWarningEnabled(WarnPedantic) {
		t.Error("-Wall should enable everything but pedantic")
	}

	for _, bad := range []string{"-Wbogus", "-Fno-bogus", "-Xfoo"} {
		if err := NewConfig().ProcessFlagString(bad); err == nil {
			t.Errorf("%q accepted", bad)
		}
	}
}

func TestFlagGroups(t *testing.T) {
	cfg := NewConfig()
	fs := cli.NewFlagSet("test")
	warningFlags, featureFlags := cfg.SetupFlagGroups(fs)
	if len(warningFlags) != int(WarnCount) || len(featureFlags) != int(FeatCount) {
		t.Fatalf("got %d warning and %d feature entries", len(warningFlags), len(featureFlags))
	}

	if err := fs.Parse([]string{"-Wpedantic", "-Fno-alignof", "-Falignof"}); err != nil {
		t.Fatal(err)
	}
	cfg.ApplyFlagGroups(warningFlags, featureFlags)
	if !cfg.IsWarningEnabled(WarnPedantic) {
		t.Error("-Wpedantic not applied")
	}
	if cfg.IsFeatureEnabled(FeatAlignof) {
		t.Error("-Fno-alignof should win over -Falignof")
	}
}
