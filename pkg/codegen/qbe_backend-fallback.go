//go:build windows

package codegen

import (
	"fmt"
	"os"
	"os/exec"
)

func (b *qbeBackend) assemble(name, il string) (string, error) {
	if _, err := exec.LookPath("qbe"); err != nil {
		return "", fmt.Errorf("self-contained QBE backend is not supported on Windows and qbe was not found in PATH: %w", err)
	}

	inputFile, err := os.CreateTemp("", "rcc-"+name+"-*.ssa")
	if err != nil {
		return "", err
	}
	defer os.Remove(inputFile.Name())
	if _, err = inputFile.WriteString(il); err != nil {
		inputFile.Close()
		return "", err
	}
	inputFile.Close()

	outputName := inputFile.Name() + ".asm"
	defer os.Remove(outputName)
	cmd := exec.Command("qbe", "-o", outputName, "-t", b.cfg.BackendTarget, inputFile.Name())
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("\n--- QBE Compilation Failed ---\nGenerated IR:\n%s\n\n%s\nError: %w", il, out, err)
	}

	asm, err := os.ReadFile(outputName)
	if err != nil {
		return "", err
	}
	return string(asm), nil
}
