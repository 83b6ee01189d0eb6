package root

import (
	"github.com/inisipanji/sawebagi/version"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "sawebagi",
	Short: "sawebagi, donation webhook relay for game servers, " + version.Version,
}
