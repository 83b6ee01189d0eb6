package cmd

import (
	"github.com/inisipanji/sawebagi/cmd/root"
	_ "github.com/inisipanji/sawebagi/cmd/server"
	_ "github.com/inisipanji/sawebagi/cmd/version"
	"github.com/spf13/cobra"
)

func Execute() {
	cobra.CheckErr(root.Cmd.Execute())
}
