package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/scenechat/internal/transcript"
)

var (
	inspectLimit   int
	inspectSession string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List recorded session attempts from the transcript",
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectLimit, "limit", "n", 20, "number of recent attempts")
	inspectCmd.Flags().StringVarP(&inspectSession, "session", "s", "", "show every attempt of one session")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if cfg.Transcript.Path == "" {
		return errors.New("transcript.path is not configured")
	}
	store, err := transcript.Open(cfg.Transcript.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	var entries []transcript.Entry
	if inspectSession != "" {
		entries, err = store.BySession(cmd.Context(), inspectSession)
	} else {
		entries, err = store.Recent(cmd.Context(), inspectLimit)
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded sessions.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FINISHED\tSESSION\tTRY\tOUTCOME\tSCENE\tPROMPT\tOUTPUT")
	for _, e := range entries {
		result := e.Output
		if e.Error != "" {
			result = "error: " + e.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			e.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(e.SessionID), e.Attempt, e.Outcome,
			sceneCell(e.MatchedID, e.PairedID),
			clip(e.Prompt, 30), clip(result, 40))
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sceneCell(matched, paired int) string {
	switch {
	case matched == 0:
		return "-"
	case paired == 0:
		return fmt.Sprintf("%d", matched)
	default:
		return fmt.Sprintf("%d→%d", matched, paired)
	}
}

func clip(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
