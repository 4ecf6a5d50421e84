package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/scenechat/internal/replay"
)

var fixturePath string

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Run a fixture of prompts and expected outcomes",
	Long: `Resolves every case of a JSON fixture against its dataset and reports
mismatches. Exits non-zero if any case fails.`,
	Args: cobra.NoArgs,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "fixture JSON file")
	_ = replayCmd.MarkFlagRequired("fixture")
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		return err
	}
	results, summary, err := replay.Run(f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.Description != "" {
		fmt.Fprintln(out, f.Description)
	}
	for _, r := range results {
		mark := "ok  "
		if !r.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(out, "%s %-32s %-10s %s\n", mark, r.Name, r.Outcome.Kind, r.Outcome.Reason)
		if !r.Passed {
			fmt.Fprintf(out, "     (-want +got)\n%s", r.Diff)
		}
	}
	fmt.Fprintf(out, "\n%d cases: %d passed, %d failed (resolved=%d unmatched=%d unpaired=%d fallback=%d)\n",
		summary.Total, summary.Passed, summary.Failed,
		summary.Resolved, summary.Unmatched, summary.Unpaired, summary.ByFallback)

	if !summary.OK() {
		return fmt.Errorf("%d of %d cases failed", summary.Failed, summary.Total)
	}
	return nil
}
