package historycmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/measures/cmd/measures/paths"
	"github.com/papercomputeco/measures/pkg/config"
	"github.com/papercomputeco/measures/pkg/storage"
	"github.com/papercomputeco/measures/pkg/storage/postgres"
	"github.com/papercomputeco/measures/pkg/storage/sqlite"
)

type auditCommander struct {
	storageDriver string
	sqlitePath    string
	postgresDSN   string
	json          bool

	out io.Writer
}

var auditFlagKeys = []string{
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgres,
}

// ErrNoPersistentAudit is returned when the configured storage driver keeps
// nothing beyond the lifetime of the server.
var ErrNoPersistentAudit = errors.New("the memory storage driver keeps no audit log between runs")

const auditLongDesc string = `Print the audit log, newest first.

Reads the SQLite database or PostgreSQL table selected by storage.driver.

Examples:
  measures history audit
  measures history audit --postgres postgres://localhost/measures --storage postgres`

func newAuditCmd() *cobra.Command {
	cmder := &auditCommander{}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Print the audit log from the configured storage",
		Long:  auditLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, p, err := paths.Load(cmd, auditFlagKeys)
			if err != nil {
				return err
			}
			cmder.out = cmd.OutOrStdout()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.run(ctx, cfg, p)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	cmd.Flags().BoolVar(&cmder.json, "json", false, "Print the audit log as JSON")

	return cmd
}

func (c *auditCommander) run(ctx context.Context, cfg *config.Config, p *paths.Paths) error {
	driver, err := openDriver(ctx, cfg, p)
	if err != nil {
		return err
	}
	defer driver.Close()

	records, err := driver.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("listing audit log: %w", err)
	}

	if c.json {
		return writeJSON(c.out, records)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt.Format(time.RFC3339),
			sequenceCell(r.Sequence),
			formatValues(r.Processed),
		})
	}

	return writeTable(c.out, "Audit log", []string{"ID", "Timestamp", "Sequence", "Processed"}, rows)
}

func openDriver(ctx context.Context, cfg *config.Config, p *paths.Paths) (storage.Driver, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverSQLite:
		driver, err := sqlite.NewSQLiteDriver(p.SQLite)
		if err != nil {
			return nil, fmt.Errorf("opening SQLite audit log: %w", err)
		}
		return driver, nil
	case config.StorageDriverPostgres:
		if cfg.Storage.PostgresDSN == "" {
			return nil, errors.New("storage.postgres_dsn is required for the postgres driver")
		}
		driver, err := postgres.NewDriver(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("opening PostgreSQL audit log: %w", err)
		}
		return driver, nil
	case config.StorageDriverMemory:
		return nil, ErrNoPersistentAudit
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
