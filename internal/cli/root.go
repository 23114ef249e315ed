package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/bsm/redislock"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrmbilling/royalty-ledger/internal/config"
	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/mailer"
	"github.com/mrmbilling/royalty-ledger/internal/repository/postgres"
	"github.com/mrmbilling/royalty-ledger/internal/repository/storage"
	"github.com/mrmbilling/royalty-ledger/internal/service"
	"github.com/mrmbilling/royalty-ledger/internal/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "royaltyctl",
	Short: "Operate the royalty ledger from the command line",
	Long: `royaltyctl talks to the ledger database directly. It shares the server's
environment variables (DATABASE_URL, REDIS_ADDRESS, SMTP_*, S3_*) but does not
need Auth0 settings.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(level)
	},
}

func init() {
	rootCmd.PersistentFlags().String("financial-year", "", "Financial year, e.g. 2025, 2025-26 or current (default: the configured year)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// ledger bundles the services the commands operate on
type ledger struct {
	royalty *service.RoyaltyService
	imports *service.ImportService
	exports *service.ExportService
	digests *service.DigestService
	close   func()
}

// openLedger connects the services to their backing stores. Tests replace it.
var openLedger = openPostgresLedger

func openPostgresLedger(ctx context.Context) (*ledger, error) {
	cfg, err := config.LoadForCLI()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	closers := []func(){pool.Close}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	if err := pool.Ping(ctx); err != nil {
		closeAll()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		closeAll()
		return nil, err
	}

	var locker service.ClientLocker = service.NewLocalClientLocker()
	if cfg.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress, Password: cfg.RedisPassword})
		closers = append(closers, func() { _ = rdb.Close() })
		locker = service.NewRedisClientLocker(redislock.New(rdb), service.DefaultRedisLockConfig())
	}

	var store service.ArchiveStore
	if cfg.S3.Enabled() {
		s3Store, err := storage.NewS3ArchiveStore(ctx, cfg.S3)
		if err != nil {
			closeAll()
			return nil, err
		}
		store = s3Store
	}

	var m mailer.Mailer
	if cfg.SMTP.Enabled() {
		smtpMailer, err := mailer.NewSMTPMailer(cfg.SMTP)
		if err != nil {
			closeAll()
			return nil, err
		}
		m = smtpMailer
	}

	entryRepo := postgres.NewRoyaltyEntryRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	metrics := service.NewMetrics(prometheus.NewRegistry())
	settings := service.NewSettingsService(postgres.NewSettingsRepository(pool))
	royalty := service.NewRoyaltyService(entryRepo, clientRepo, settings, service.NewCascadeService(entryRepo, metrics), locker, metrics)
	clients := service.NewClientService(clientRepo, entryRepo, locker)
	reports := service.NewReportService(entryRepo, settings)

	return &ledger{
		royalty: royalty,
		imports: service.NewImportService(clients, royalty, metrics),
		exports: service.NewExportService(entryRepo, clientRepo, settings, store, cfg.S3.PresignExpiry),
		digests: service.NewDigestService(reports, m, cfg.Digest.Recipients, metrics),
		close:   closeAll,
	}, nil
}

// withLedger opens the ledger for the duration of fn
func withLedger(cmd *cobra.Command, fn func(l *ledger) error) error {
	l, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer l.close()
	return fn(l)
}

func financialYearFlag(cmd *cobra.Command) (*domain.FinancialYear, error) {
	raw, _ := cmd.Flags().GetString("financial-year")
	return util.ParseFinancialYear(raw)
}
