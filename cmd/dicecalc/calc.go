package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var calcCmd = &cobra.Command{
	Use:   "calc [phrase...]",
	Short: "Evaluate a dice formula",
	Long: `Calc evaluates the phrase formed by its arguments. With no arguments it
evaluates every non-blank line read from standard input.`,
	RunE: runCalc,
}

func init() {
	addEvalFlags(calcCmd)
}

func runCalc(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	out, err := newPrinter(os.Stdout, format, useColor(cmd, os.Stdout))
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	defer out.close()

	phrases := []string{strings.Join(args, " ")}
	if len(args) == 0 {
		phrases, err = readPhrases(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	failed := false
	for _, phrase := range phrases {
		outcome, calcErr := s.pipeline.Calculate(cmd.Context(), phrase)
		if calcErr != nil {
			failed = true
		}
		if err := out.print(newReport(phrase, outcome, calcErr)); err != nil {
			return err
		}
	}
	if failed {
		return errFailed
	}
	return nil
}

// readPhrases returns the non-blank lines of r.
func readPhrases(r io.Reader) ([]string, error) {
	var phrases []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		phrases = append(phrases, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading standard input: %w", err)
	}
	return phrases, nil
}
