package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"deoptlens/internal/diag"
	"deoptlens/internal/ic"
	"deoptlens/internal/source"
)

var classifyCmd = &cobra.Command{
	Use:   "classify CODE|OLD>NEW...",
	Short: "Show the IC state and severity of trace codes",
	Long: `Classify single IC state codes as they appear in V8 traces (0 . 1 ^ P N G X),
or transitions written OLD>NEW. Unknown codes are reported and fail the command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	bag := diag.NewBag(0)
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	for i, arg := range args {
		line, err := classifyArg(arg)
		if err != nil {
			bag.Add(diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.ClassifyUnknownCode,
				Primary:  source.MustPos("<args>", 1, i+1),
				Message:  fmt.Sprintf("%q: %v", arg, err),
			})
			continue
		}
		fmt.Fprintln(tw, line)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if bag.Len() > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), diag.FormatShort(bag.Items()))
		return errors.New("unknown IC codes")
	}
	return nil
}

func classifyArg(arg string) (string, error) {
	if oldCode, newCode, ok := strings.Cut(arg, ">"); ok {
		if len(oldCode) != 1 || len(newCode) != 1 {
			return "", fmt.Errorf("transition must be two single-character codes: %w", ic.ErrUnknownCode)
		}
		ts, worst, err := ic.ScoreTransitions([]ic.RawTransition{{Old: oldCode[0], New: newCode[0]}})
		if err != nil {
			return "", err
		}
		t := ts[0]
		return fmt.Sprintf("%s\t%s -> %s\tseverity %s\t%s", arg, t.Old, t.New, worst, worst.Class()), nil
	}
	st, err := ic.ClassifyString(arg)
	if err != nil {
		return "", err
	}
	sev, err := ic.SeverityOf(st)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s\t%s\tseverity %s\t%s", arg, st, sev, sev.Class()), nil
}
