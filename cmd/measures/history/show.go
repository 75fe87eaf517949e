package historycmder

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/measures/cmd/measures/paths"
	"github.com/papercomputeco/measures/pkg/config"
	"github.com/papercomputeco/measures/pkg/history"
	"github.com/papercomputeco/measures/pkg/keys"
	"github.com/papercomputeco/measures/pkg/logger"
)

type showCommander struct {
	privateKey  string
	publicKey   string
	historyPath string
	json        bool

	out io.Writer
}

var showFlagKeys = []string{
	config.FlagPrivateKey,
	config.FlagPublicKey,
	config.FlagHistoryPath,
}

const showLongDesc string = `Decrypt and print the secure history file.

Unlike "measures serve", which starts empty when the history file cannot be
read, this command fails on a corrupt file or a mismatched key pair.

Examples:
  measures history show
  measures history show --json`

func newShowCmd() *cobra.Command {
	cmder := &showCommander{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Decrypt and print the secure history file",
		Long:  showLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, p, err := paths.Load(cmd, showFlagKeys)
			if err != nil {
				return err
			}
			cmder.out = cmd.OutOrStdout()
			return cmder.run(p)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagPrivateKey, &cmder.privateKey)
	config.AddStringFlag(cmd, config.Flags, config.FlagPublicKey, &cmder.publicKey)
	config.AddStringFlag(cmd, config.Flags, config.FlagHistoryPath, &cmder.historyPath)
	cmd.Flags().BoolVar(&cmder.json, "json", false, "Print the history as JSON")

	return cmd
}

func (c *showCommander) run(p *paths.Paths) error {
	kp, err := keys.LoadKeyPair(p.PrivateKey, p.PublicKey)
	if err != nil {
		return err
	}
	if err := kp.Verify(); err != nil {
		return fmt.Errorf("%s and %s: %w", p.PrivateKey, p.PublicKey, err)
	}

	store := history.NewStore(p.History, logger.Nop())
	res := store.Load(kp.Private)
	if res.Status == history.LoadStatusCorrupt {
		return fmt.Errorf("reading %s: %w", p.History, res.Err)
	}

	entries := store.Entries()

	if c.json {
		return writeJSON(c.out, entries)
	}

	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{strconv.Itoa(i + 1), sequenceCell(e.Sequence), formatValues(e.Processed)})
	}

	return writeTable(c.out, "Secure history", []string{"#", "Sequence", "Processed"}, rows)
}
