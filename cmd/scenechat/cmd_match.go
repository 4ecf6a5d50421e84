package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/scenechat/internal/matcher"
)

var matchCmd = &cobra.Command{
	Use:   "match <prompt>",
	Short: "Resolve one prompt and print the outcome as JSON",
	Example: `  scenechat match "is it going to rain?"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib := loadLibrary(cmd.Context())
		out, err := matcher.NewEngine(lib, logger).Resolve(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(out.View())
	},
}
