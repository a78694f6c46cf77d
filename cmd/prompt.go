package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"stratego_oracle/internal/domain/analysis"
	strategistUC "stratego_oracle/internal/usecase/strategist"
	"stratego_oracle/internal/utils"
)

var statePath string

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the prompt composed for a game state JSON (no oracle call)",
	Long: `Reads an analysis request (the same JSON the /analyze endpoint accepts) and prints
the exact text that would be sent to the oracle.

Example:
  stratego-oracle prompt --state turn12.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrompt(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	promptCmd.Flags().StringVar(&statePath, "state", "-", `request JSON file, "-" for stdin`)
}

func runPrompt(stdin io.Reader, out io.Writer) error {
	in := stdin
	if statePath != "-" {
		f, err := os.Open(statePath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var req analysis.Request
	if err := utils.DecodeJSON(in, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	_, err := fmt.Fprintln(out, strategistUC.ComposePrompt(&req))
	return err
}
