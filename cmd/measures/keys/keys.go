// Package keyscmder provides the keys command for generating and inspecting
// the RSA key pair that protects the secure history.
package keyscmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/measures/pkg/config"
)

const keysLongDesc string = `Manage the RSA key pair.

The private and public keys live in the .measures/ directory as PEM files.
They are generated automatically by "measures serve" when neither exists;
use these subcommands to create them ahead of time or to inspect them.

  measures keys init    Generate the key pair if it does not exist
  measures keys show    Print the key paths and public key fingerprint`

const keysShortDesc string = "Manage the RSA key pair"

func NewKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: keysShortDesc,
		Long:  keysLongDesc,
	}

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newShowCmd())

	return cmd
}

var keyFlagKeys = []string{
	config.FlagPrivateKey,
	config.FlagPublicKey,
}
