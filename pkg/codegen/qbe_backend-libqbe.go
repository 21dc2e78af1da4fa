//go:build !windows

package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"modernc.org/libqbe"
)

func (b *qbeBackend) assemble(name, il string) (string, error) {
	var asmBuf bytes.Buffer
	err := libqbe.Main(b.cfg.BackendTarget, name+".ssa", strings.NewReader(il), &asmBuf, nil)
	if err != nil {
		return "", fmt.Errorf("\n--- QBE Compilation Failed ---\nGenerated IR:\n%s\n\nlibqbe error: %w", il, err)
	}
	return asmBuf.String(), nil
}
