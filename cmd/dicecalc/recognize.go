package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize [flags] FILE",
	Short: "Evaluate the best variant of a speech recognizer response",
	Long: `Recognize reads a recognitionResults XML document from FILE ("-" for
standard input) and evaluates the recognizer's first variant.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	addEvalFlags(recognizeCmd)
}

func runRecognize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	out, err := newPrinter(os.Stdout, format, useColor(cmd, os.Stdout))
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening recognizer payload: %w", err)
		}
		defer f.Close()
		in = f
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	defer out.close()

	outcome, calcErr := s.pipeline.Recognize(cmd.Context(), in)
	if err := out.print(newReport(outcome.Phrase, outcome, calcErr)); err != nil {
		return err
	}
	if calcErr != nil {
		return errFailed
	}
	return nil
}
