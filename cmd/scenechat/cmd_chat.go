package main

import (
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/scenechat/internal/chat"
	"github.com/danielpatrickdp/scenechat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the dataset in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lib := loadLibrary(cmd.Context())
		factory := chat.NewFactory(cfg.Session.ToSession(), lib, logger)
		return tui.Run(factory.Open())
	},
}
