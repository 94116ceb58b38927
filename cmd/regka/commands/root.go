package commands

import (
	"github.com/spf13/cobra"
)

var (
	_config = NewDefaultCLIConfig()
)

//RootCmd is the root command for regka
var RootCmd = &cobra.Command{
	Use:              "regka",
	Short:            "gossip key agreement simulator",
	TraverseChildren: true,
}
