package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"deoptlens/internal/driver"
	"deoptlens/internal/entry"
)

var orderCmd = &cobra.Command{
	Use:   "order --entries FILE [--file KEY]",
	Short: "Print the marker queue in weave order",
	Args:  cobra.NoArgs,
	RunE:  runOrder,
}

func init() {
	orderCmd.Flags().String("entries", "", "entries JSON produced by the trace parser")
	orderCmd.Flags().String("file", "", "source key to print (default: every file)")
	orderCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type orderedFile struct {
	Key     string        `json:"key"`
	FileID  string        `json:"file_id"`
	Entries []entry.Entry `json:"entries"`
}

func runOrder(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("entries")
	if path == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path = cfg.Resolve(cfg.Run.Entries)
	}
	if path == "" {
		return errors.New("no entries file: pass --entries or set [run].entries")
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	doc, _, err := driver.LoadEntries(path, nil)
	if err != nil {
		return err
	}
	keys := doc.Keys()
	if only, _ := cmd.Flags().GetString("file"); only != "" {
		keys = []string{only}
	}

	files := make([]orderedFile, 0, len(keys))
	for _, key := range keys {
		set, id, ok := doc.ForFile(key)
		if !ok {
			return fmt.Errorf("no entries for %q", key)
		}
		files = append(files, orderedFile{Key: key, FileID: id, Entries: set.Ordered()})
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(files)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, f := range files {
		fmt.Fprintf(tw, "%s (#%s)\n", f.Key, f.FileID)
		for _, e := range f.Entries {
			fmt.Fprintf(tw, "  %d:%d\t%s\t%s\t%s\t%s\n", e.Line, e.Column, e.Kind, e.ID, e.Severity, e.Severity.Class())
		}
	}
	return tw.Flush()
}
