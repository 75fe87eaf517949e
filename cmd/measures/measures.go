// Package measurescmder is the root of the measures command tree.
package measurescmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/measures/cmd/measures/config"
	decodecmder "github.com/papercomputeco/measures/cmd/measures/decode"
	historycmder "github.com/papercomputeco/measures/cmd/measures/history"
	initcmder "github.com/papercomputeco/measures/cmd/measures/init"
	keyscmder "github.com/papercomputeco/measures/cmd/measures/keys"
	logscmder "github.com/papercomputeco/measures/cmd/measures/logs"
	servecmder "github.com/papercomputeco/measures/cmd/measures/serve"
	versioncmder "github.com/papercomputeco/measures/cmd/version"
)

const measuresLongDesc string = `Measures converts encoded measurement sequences into lists of totals.

Run the API server with:
  measures serve

Other commands work offline against the .measures/ directory:
  measures decode <sequence>   Decode sequences without a server
  measures history show        Print the encrypted secure history
  measures history audit       Print the audit log
  measures keys init           Generate the RSA key pair
  measures logs -f             Follow the server log
  measures config list         Show the persistent configuration`

const measuresShortDesc string = "Measures - measurement sequence conversion"

func NewMeasuresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "measures",
		Short: measuresShortDesc,
		Long:  measuresLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .measures/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(decodecmder.NewDecodeCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(keyscmder.NewKeysCmd())
	cmd.AddCommand(logscmder.NewLogsCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
