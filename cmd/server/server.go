package server

import (
	"github.com/inisipanji/sawebagi/cmd/root"
	"github.com/inisipanji/sawebagi/pkg/server"
	"github.com/spf13/cobra"
)

var FlagConfig string

var Cmd = &cobra.Command{
	Use:     "server",
	Short:   "Run donation relay server",
	Aliases: []string{"s"},
	Args:    cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return server.Server(FlagConfig)
	},
}

func init() {
	root.Cmd.AddCommand(Cmd)
	Cmd.Flags().StringVarP(&FlagConfig, "config", "c", "", "Path to YAML config (default $CONFIG or config.yaml)")
}
