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

type initCommander struct {
	privateKey string
	publicKey  string
}

func newInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate the RSA key pair if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, p, err := paths.Load(cmd, keyFlagKeys)
			if err != nil {
				return err
			}
			return cmder.run(p)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagPrivateKey, &cmder.privateKey)
	config.AddStringFlag(cmd, config.Flags, config.FlagPublicKey, &cmder.publicKey)

	return cmd
}

func (c *initCommander) run(p *paths.Paths) error {
	var generated bool
	err := cliui.Step(os.Stdout, "Ensuring RSA key pair", func() error {
		var err error
		generated, err = keys.EnsureKeyPair(p.PrivateKey, p.PublicKey)
		return err
	})
	if err != nil {
		return err
	}

	if !generated {
		fmt.Printf("  %s\n", cliui.DimStyle.Render("Key files already present, nothing generated."))
	}

	return printKeyPair(p)
}
