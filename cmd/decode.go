package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	strategistUC "stratego_oracle/internal/usecase/strategist"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode an oracle reply from stdin into a move JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecode(cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runDecode(in io.Reader, out io.Writer) error {
	text, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	move, err := strategistUC.Decode(string(text))
	if err != nil {
		return err
	}
	return json.NewEncoder(out).Encode(map[string]any{"move": move})
}
