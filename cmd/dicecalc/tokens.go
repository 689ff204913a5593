package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/dicecalc/internal/dice"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens PHRASE...",
	Short: "Show how a phrase is normalized and tokenized",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTokens,
}

func runTokens(cmd *cobra.Command, args []string) error {
	phrase := strings.Join(args, " ")
	normalized := dice.Normalize(phrase)
	fmt.Fprintf(os.Stdout, "normalized: %q\n", normalized)

	tokens, err := dice.Tokenize(normalized)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return errFailed
	}
	for i, tok := range tokens {
		fmt.Fprintf(os.Stdout, "%3d  %s\n", i, tok)
	}
	return nil
}
