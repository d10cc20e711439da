package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fyrsmithlabs/contentd/internal/orchestrator"
)

// terminalConfirmer asks the operator to accept the proposed working
// directory. It backs interactive runs; headless runs use the
// auto-confirm validator instead.
type terminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminalConfirmer(in io.Reader, out io.Writer) *terminalConfirmer {
	return &terminalConfirmer{in: bufio.NewReader(in), out: out}
}

func (c *terminalConfirmer) Confirm(ctx context.Context, proposal *orchestrator.DirectoryProposal, structure string, oracleErr error) (*orchestrator.DirectoryProposal, error) {
	if oracleErr != nil {
		return nil, fmt.Errorf("directory selection failed: %w", oracleErr)
	}
	if proposal == nil || proposal.WorkingDirectory == "" {
		return nil, fmt.Errorf("no directory was proposed")
	}

	fmt.Fprintf(c.out, "\nProposed working directory: %s\n", proposal.WorkingDirectory)
	if proposal.Justification != "" {
		fmt.Fprintf(c.out, "Justification: %s\n", proposal.Justification)
	}
	fmt.Fprintf(c.out, "Confidence: %.0f%%\n", proposal.Confidence*100)
	fmt.Fprint(c.out, "Proceed? [y/N]: ")

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("reading confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return proposal, nil
	default:
		return nil, fmt.Errorf("directory selection rejected by operator")
	}
}

var _ orchestrator.DirectoryConfirmer = (*terminalConfirmer)(nil)
