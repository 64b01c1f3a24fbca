package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"bountyvault/internal/transport/presenter"
)

func TestWriteOutputFormats(t *testing.T) {
	view := presenter.CustodyAccount{Address: "ab", Holder: "acme", HolderKind: "signer", Balance: 18446744073709551615}

	testCases := []struct {
		format string
		want   string
	}{
		{format: "text", want: "account ab"},
		{format: "json", want: `"balance": "18446744073709551615"`},
		{format: "yaml", want: "balance: 18446744073709551615"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.format, func(t *testing.T) {
			previous := outputFormat
			outputFormat = testCase.format
			t.Cleanup(func() { outputFormat = previous })

			var buf bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&buf)
			if err := writeOutput(cmd, view, textLines("account "+view.Address)); err != nil {
				t.Fatalf("writeOutput() error = %v", err)
			}
			if !strings.Contains(buf.String(), testCase.want) {
				t.Fatalf("output = %q, want substring %q", buf.String(), testCase.want)
			}
		})
	}
}

func TestWriteOutputRejectsUnknownFormat(t *testing.T) {
	previous := outputFormat
	outputFormat = "xml"
	t.Cleanup(func() { outputFormat = previous })

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	if err := writeOutput(cmd, struct{}{}, textLines()); err == nil {
		t.Fatalf("expected error for xml output")
	}
}
