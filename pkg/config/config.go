package config

import (
	"fmt"
	"strings"

	"github.com/xplshn/rcc/pkg/cli"
	"modernc.org/libqbe"
)

type Feature int

const (
	FeatExtern Feature = iota
	FeatStmtExpr
	FeatAlignof
	FeatCount
)

type Warning int

const (
	WarnPedantic Warning = iota
	WarnUnalignedAlloca
	WarnExtra
	WarnCount
)

type Info struct {
	Name        string
	Enabled     bool
	Description string
}

type Config struct {
	Features      map[Feature]Info
	Warnings      map[Warning]Info
	FeatureMap    map[string]Feature
	WarningMap    map[string]Warning
	StdName       string
	BackendName   string
	BackendTarget string
	WordSize      int // bytes per IR value; picks the QBE base type
}

func NewConfig() *Config {
	cfg := &Config{
		Features:    make(map[Feature]Info),
		Warnings:    make(map[Warning]Info),
		FeatureMap:  make(map[string]Feature),
		WarningMap:  make(map[string]Warning),
		StdName:     "gnu",
		BackendName: "x86",
		WordSize:    8,
	}

	features := map[Feature]Info{
		FeatExtern:   {"extern", true, "Allow 'extern' global declarations."},
		FeatStmtExpr: {"stmt-expr", true, "Allow GNU statement expressions '({ ... })'."},
		FeatAlignof:  {"alignof", true, "Allow the '_Alignof' operator."},
	}

	warnings := map[Warning]Info{
		WarnPedantic:        {"pedantic", false, "Warn on GNU extensions such as statement expressions."},
		WarnUnalignedAlloca: {"unaligned-alloca", true, "Warn when an alloca reserves a byte count that is not a multiple of 8."},
		WarnExtra:           {"extra", true, "Enable extra miscellaneous warnings."},
	}

	cfg.Features, cfg.Warnings = features, warnings
	for ft, info := range features {
		cfg.FeatureMap[info.Name] = ft
	}
	for wt, info := range warnings {
		cfg.WarningMap[info.Name] = wt
	}

	return cfg
}

// SetTarget selects the backend and, for QBE, the target ABI. An empty
// target picks the host's default.
func (c *Config) SetTarget(goos, goarch, backend, target string) error {
	switch backend {
	case "", "x86":
		c.BackendName = "x86"
		c.BackendTarget = "amd64"
		c.WordSize = 8
		return nil
	case "qbe":
		c.BackendName = "qbe"
	default:
		return fmt.Errorf("unsupported backend '%s'. Supported: 'x86', 'qbe'", backend)
	}

	if target == "" {
		target = libqbe.DefaultTarget(goos, goarch)
	}
	c.BackendTarget = target

	switch c.BackendTarget {
	case "amd64_sysv", "amd64_apple", "arm64", "arm64_apple", "rv64":
		c.WordSize = 8
	default:
		return fmt.Errorf("unrecognized or unsupported QBE target '%s'", c.BackendTarget)
	}
	return nil
}

func (c *Config) SetFeature(ft Feature, enabled bool) {
	if info, ok := c.Features[ft]; ok {
		info.Enabled = enabled
		c.Features[ft] = info
	}
}

func (c *Config) IsFeatureEnabled(ft Feature) bool { return c.Features[ft].Enabled }

func (c *Config) SetWarning(wt Warning, enabled bool) {
	if info, ok := c.Warnings[wt]; ok {
		info.Enabled = enabled
		c.Warnings[wt] = info
	}
}

func (c *Config) IsWarningEnabled(wt Warning) bool { return c.Warnings[wt].Enabled }

// ApplyStd switches between the strict grammar ("rcc") and the one with GNU
// extensions ("gnu").
func (c *Config) ApplyStd(stdName string) error {
	isPedantic := c.IsWarningEnabled(WarnPedantic)

	type stdSettings struct {
		feature  Feature
		rccValue bool
		gnuValue bool
	}

	settings := []stdSettings{
		{FeatExtern, true, true},
		{FeatStmtExpr, false, true},
		{FeatAlignof, !isPedantic, true},
	}

	switch stdName {
	case "rcc":
		for _, s := range settings {
			c.SetFeature(s.feature, s.rccValue)
		}
	case "gnu":
		for _, s := range settings {
			c.SetFeature(s.feature, s.gnuValue)
		}
	default:
		return fmt.Errorf("unsupported standard '%s'. Supported: 'rcc', 'gnu'", stdName)
	}
	c.StdName = stdName
	return nil
}

// SetupFlagGroups registers -W<name>/-Wno-<name> and -F<name>/-Fno-<name>
// for every warning and feature. The returned slices are indexed by
// Warning and Feature respectively.
func (c *Config) SetupFlagGroups(fs *cli.FlagSet) ([]cli.FlagGroupEntry, []cli.FlagGroupEntry) {
	warningFlags := make([]cli.FlagGroupEntry, WarnCount)
	for i := Warning(0); i < WarnCount; i++ {
		info := c.Warnings[i]
		warningFlags[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "W", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool),
		}
	}

	featureFlags := make([]cli.FlagGroupEntry, FeatCount)
	for i := Feature(0); i < FeatCount; i++ {
		info := c.Features[i]
		featureFlags[i] = cli.FlagGroupEntry{
			Name: info.Name, Prefix: "F", Usage: info.Description,
			Enabled: new(bool), Disabled: new(bool),
		}
	}

	fs.AddFlagGroup("Warnings", "Diagnostics toggles", "warning", "Available Warnings:", warningFlags)
	fs.AddFlagGroup("Features", "Language toggles", "feature", "Available Features:", featureFlags)
	return warningFlags, featureFlags
}

// ApplyFlagGroups copies the parsed flag group state back into c. An
// explicit -Wno-/-Fno- wins over the positive form.
func (c *Config) ApplyFlagGroups(warningFlags, featureFlags []cli.FlagGroupEntry) {
	for i, entry := range warningFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetWarning(Warning(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetWarning(Warning(i), false)
		}
	}
	for i, entry := range featureFlags {
		if entry.Enabled != nil && *entry.Enabled {
			c.SetFeature(Feature(i), true)
		}
		if entry.Disabled != nil && *entry.Disabled {
			c.SetFeature(Feature(i), false)
		}
	}
}

// ProcessFlagString applies a whitespace separated list such as
// "-Wpedantic -Fno-stmt-expr". Unknown names are reported.
func (c *Config) ProcessFlagString(flagStr string) error {
	for _, flag := range strings.Fields(flagStr) {
		if err := c.applyFlag(flag); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) applyFlag(flag string) error {
	trimmed := strings.TrimPrefix(flag, "-")
	var isWarning bool
	switch {
	case strings.HasPrefix(trimmed, "W"):
		isWarning = true
	case strings.HasPrefix(trimmed, "F"):
	default:
		return fmt.Errorf("unknown flag '%s'", flag)
	}

	name := trimmed[1:]
	enable := !strings.HasPrefix(name, "no-")
	name = strings.TrimPrefix(name, "no-")

	if isWarning {
		if name == "all" {
			for i := Warning(0); i < WarnCount; i++ {
				if i != WarnPedantic {
					c.SetWarning(i, enable)
				}
			}
			return nil
		}
		w, ok := c.WarningMap[name]
		if !ok {
			return fmt.Errorf("unknown warning '%s'", name)
		}
		c.SetWarning(w, enable)
		return nil
	}

	f, ok := c.FeatureMap[name]
	if !ok {
		return fmt.Errorf("unknown feature '%s'", name)
	}
	c.SetFeature(f, enable)
	return nil
}
