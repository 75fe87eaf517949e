// Package configcmder provides the config command for managing persistent
// measures configuration stored in the .measures/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent measures configuration.

Configuration is stored as config.toml in the .measures/ directory and
provides default values for command flags. CLI flags and MEASURES_*
environment variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  api.listen, api.allow_origins,
  keys.private_key_path, keys.public_key_path,
  history.path,
  eventstream.kafka_brokers, eventstream.kafka_topic,
  worker.num_workers, worker.queue_size

Use subcommands to get, set, or list configuration values:
  measures config set <key> <value>    Set a configuration value
  measures config get <key>            Get a configuration value
  measures config list                 List all configuration values

Examples:
  measures config set storage.driver postgres
  measures config set eventstream.kafka_brokers localhost:9092
  measures config get api.listen
  measures config list`

const configShortDesc string = "Manage persistent measures configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
