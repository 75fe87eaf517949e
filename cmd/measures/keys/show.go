package keyscmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/measures/cmd/measures/paths"
	"github.com/papercomputeco/measures/pkg/cliui"
	"github.com/papercomputeco/measures/pkg/config"
	"github.com/papercomputeco/measures/pkg/keys"
)

type showCommander struct {
	privateKey string
	publicKey  string
}

func newShowCmd() *cobra.Command {
	cmder := &showCommander{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the key paths and public key fingerprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, p, err := paths.Load(cmd, keyFlagKeys)
			if err != nil {
				return err
			}
			return printKeyPair(p)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagPrivateKey, &cmder.privateKey)
	config.AddStringFlag(cmd, config.Flags, config.FlagPublicKey, &cmder.publicKey)

	return cmd
}

// printKeyPair loads and verifies the pair at p, then prints its paths and
// fingerprint.
func printKeyPair(p *paths.Paths) error {
	kp, err := keys.LoadKeyPair(p.PrivateKey, p.PublicKey)
	if err != nil {
		return err
	}

	if err := kp.Verify(); err != nil {
		return fmt.Errorf("%s and %s: %w", p.PrivateKey, p.PublicKey, err)
	}

	fingerprint, err := kp.Fingerprint()
	if err != nil {
		return err
	}

	cliui.Fprintf(os.Stdout, "\n  %s  %s\n", cliui.KeyStyle.Render("Private key:"), cliui.ValueStyle.Render(p.PrivateKey))
	cliui.Fprintf(os.Stdout, "  %s  %s\n", cliui.KeyStyle.Render("Public key: "), cliui.ValueStyle.Render(p.PublicKey))
	cliui.Fprintf(os.Stdout, "  %s  %s\n\n", cliui.KeyStyle.Render("Fingerprint:"), cliui.DimStyle.Render(fingerprint))

	return nil
}
