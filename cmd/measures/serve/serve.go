// Package servecmder provides the serve command that runs the measurement
// conversion API.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/measures/api"
	"github.com/papercomputeco/measures/cmd/measures/paths"
	"github.com/papercomputeco/measures/pkg/buildinfo"
	"github.com/papercomputeco/measures/pkg/config"
	"github.com/papercomputeco/measures/pkg/conversion"
	"github.com/papercomputeco/measures/pkg/eventstream"
	"github.com/papercomputeco/measures/pkg/eventstream/kafka"
	"github.com/papercomputeco/measures/pkg/eventstream/nop"
	"github.com/papercomputeco/measures/pkg/history"
	"github.com/papercomputeco/measures/pkg/keys"
	"github.com/papercomputeco/measures/pkg/logger"
	"github.com/papercomputeco/measures/pkg/storage"
	"github.com/papercomputeco/measures/pkg/storage/inmemory"
	"github.com/papercomputeco/measures/pkg/storage/postgres"
	"github.com/papercomputeco/measures/pkg/storage/sqlite"
	"github.com/papercomputeco/measures/pkg/worker"
)

type serveCommander struct {
	flags serveFlags

	debug  bool
	cfg    *config.Config
	paths  *paths.Paths
	logger *slog.Logger
}

// serveFlags are flag targets only; effective values are read back through
// viper so config.toml and MEASURES_* env vars apply.
type serveFlags struct {
	listen       string
	allowOrigins string
	storage      string
	sqlitePath   string
	postgresDSN  string
	privateKey   string
	publicKey    string
	historyPath  string
	kafkaBrokers string
	kafkaTopic   string
	workers      uint
	queueSize    uint
}

var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagAllowOrigins,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagPrivateKey,
	config.FlagPublicKey,
	config.FlagHistoryPath,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
	config.FlagWorkers,
	config.FlagWorkerQueueCap,
}

const serveLongDesc string = `Run the measures API server.

On startup the RSA key pair is generated if neither key file exists, loaded
and checked for consistency. The encrypted history is then loaded; a missing
or unreadable history file starts an empty history. The history is encrypted
and written back when the server shuts down.

Endpoints:
  GET /convert-measurements?input=<sequence>
  GET /history
  GET /secure-history
  GET /ping
  /mcp    Model Context Protocol tools (streamable HTTP)`

const serveShortDesc string = "Run the measures API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.cfg, cmder.paths, err = paths.Load(cmd, serveFlagKeys)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	f := &cmder.flags
	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &f.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagAllowOrigins, &f.allowOrigins)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDriver, &f.storage)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &f.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &f.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagPrivateKey, &f.privateKey)
	config.AddStringFlag(cmd, config.Flags, config.FlagPublicKey, &f.publicKey)
	config.AddStringFlag(cmd, config.Flags, config.FlagHistoryPath, &f.historyPath)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &f.kafkaBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &f.kafkaTopic)
	config.AddUintFlag(cmd, config.Flags, config.FlagWorkers, &f.workers)
	config.AddUintFlag(cmd, config.Flags, config.FlagWorkerQueueCap, &f.queueSize)

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logFile, err := os.OpenFile(c.paths.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	c.logger = logger.Multi(
		logger.New(logger.WithDebug(c.debug), logger.WithPretty(true)),
		logger.New(
			logger.WithDebug(c.debug),
			logger.WithJSON(true),
			logger.WithWriter(logFile),
			logger.WithAttrs(
				slog.String("service", buildinfo.Name),
				slog.String("version", buildinfo.Version),
			),
		),
	)
	c.logger.Info("starting", "build", buildinfo.String())

	kp, err := c.loadKeys()
	if err != nil {
		return err
	}

	hist := history.NewStore(c.paths.History, c.logger)
	c.logLoadResult(hist.Load(kp.Private))

	// Registered before anything else can fail so the history is flushed
	// on every return path, including server errors and signals.
	defer hist.Persist(kp.Public)

	storer, err := c.newStorageDriver(ctx)
	if err != nil {
		return err
	}
	defer storer.Close()

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	pool, err := worker.NewPool(&worker.Config{
		Publisher:  publisher,
		NumWorkers: c.cfg.Worker.NumWorkers,
		QueueSize:  c.cfg.Worker.QueueSize,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Close()

	converter, err := conversion.NewService(&conversion.Config{
		Storer:  storer,
		History: hist,
		Events:  pool,
		Logger:  c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating conversion service: %w", err)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr:   c.cfg.API.Listen,
		AllowOrigins: c.cfg.API.AllowOrigins,
	}, converter, c.logger)
	if err != nil {
		return fmt.Errorf("creating api server: %w", err)
	}
	defer func() {
		if err := server.Shutdown(); err != nil {
			c.logger.Error("api server shutdown failed", "error", err)
		}
	}()

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return nil
	case <-ctx.Done():
		c.logger.Info("context cancelled, shutting down")
		return nil
	}
}

// loadKeys generates the key pair when absent, loads it and refuses to start
// on a mismatched pair.
func (c *serveCommander) loadKeys() (*keys.KeyPair, error) {
	generated, err := keys.EnsureKeyPair(c.paths.PrivateKey, c.paths.PublicKey)
	if err != nil {
		return nil, err
	}
	if generated {
		c.logger.Info("generated new RSA key pair",
			"private_key", c.paths.PrivateKey,
			"public_key", c.paths.PublicKey,
		)
	}

	kp, err := keys.LoadKeyPair(c.paths.PrivateKey, c.paths.PublicKey)
	if err != nil {
		return nil, err
	}

	if err := kp.Verify(); err != nil {
		return nil, fmt.Errorf("%s and %s: %w", c.paths.PrivateKey, c.paths.PublicKey, err)
	}

	fingerprint, err := kp.Fingerprint()
	if err != nil {
		return nil, err
	}
	c.logger.Info("RSA key pair loaded", "fingerprint", fingerprint)

	return kp, nil
}

func (c *serveCommander) logLoadResult(res history.LoadResult) {
	switch res.Status {
	case history.LoadStatusLoaded:
		c.logger.Info("secure history loaded", "entries", res.Count)
	case history.LoadStatusMissing:
		c.logger.Info("no secure history file found, starting with empty history")
	case history.LoadStatusCorrupt:
		c.logger.Error("failed to load secure history, starting with empty history",
			"error", res.Err,
		)
	}
}

func (c *serveCommander) newStorageDriver(ctx context.Context) (storage.Driver, error) {
	switch c.cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		if c.cfg.Storage.PostgresDSN == "" {
			return nil, errors.New("storage.postgres_dsn is required for the postgres driver")
		}
		driver, err := postgres.NewDriver(ctx, c.cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL storer: %w", err)
		}
		c.logger.Info("using PostgreSQL storage")
		return driver, nil

	case config.StorageDriverSQLite:
		driver, err := sqlite.NewSQLiteDriver(c.paths.SQLite)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
		}
		c.logger.Info("using SQLite storage", "path", c.paths.SQLite)
		return driver, nil

	case config.StorageDriverMemory:
		c.logger.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.cfg.Storage.Driver)
	}
}

func (c *serveCommander) newPublisher() (eventstream.Publisher, error) {
	brokers := c.cfg.EventStream.KafkaBrokerList()
	if len(brokers) == 0 {
		c.logger.Debug("event stream disabled")
		return nop.NewPublisher(), nil
	}

	publisher, err := kafka.NewPublisher(&kafka.Config{
		Brokers:  brokers,
		Topic:    c.cfg.EventStream.KafkaTopic,
		ClientID: "measures",
		Logger:   c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	c.logger.Info("publishing conversion events to kafka",
		"brokers", brokers,
		"topic", c.cfg.EventStream.KafkaTopic,
	)
	return publisher, nil
}
