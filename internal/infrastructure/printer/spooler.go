package printer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/jhoicas/farmacia-pos/internal/application/ports"
	"github.com/jhoicas/farmacia-pos/internal/domain"
)

var _ ports.Printer = (*Spooler)(nil)

// jobIDRe "request id is TERMICA-42 (1 file(s))" de CUPS.
var jobIDRe = regexp.MustCompile(`request id is (\S+)`)

// Spooler envía el trabajo en modo raw al spooler del sistema (lp de CUPS).
type Spooler struct {
	command string
	printer string
}

// NewSpooler command vacío usa "lp".
func NewSpooler(command, printer string) *Spooler {
	if command == "" {
		command = "lp"
	}
	return &Spooler{command: command, printer: printer}
}

func (s *Spooler) Name() string { return s.printer }

// Args argumentos de la línea de comando.
func (s *Spooler) Args() []string {
	args := []string{"-o", "raw"}
	if s.printer != "" {
		args = append([]string{"-d", s.printer}, args...)
	}
	return args
}

func (s *Spooler) Print(ctx context.Context, data []byte) (string, error) {
	cmd := exec.CommandContext(ctx, s.command, s.Args()...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("%w: %s: %s", domain.ErrPrinterUnavailable, s.command, msg)
	}
	return parseJobID(stdout.String()), nil
}

func parseJobID(out string) string {
	if m := jobIDRe.FindStringSubmatch(out); len(m) == 2 {
		return m[1]
	}
	return ""
}
