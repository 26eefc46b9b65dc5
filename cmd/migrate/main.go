package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/yadgarautos/jobfiles/internal/auth"
	"github.com/yadgarautos/jobfiles/internal/config"
	"github.com/yadgarautos/jobfiles/internal/dynamodb"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/postgres"
	"github.com/yadgarautos/jobfiles/internal/repository"
	"github.com/yadgarautos/jobfiles/internal/sentry"
	"github.com/yadgarautos/jobfiles/internal/service"
	"github.com/yadgarautos/jobfiles/internal/types"
)

const migrationTimeout = 2 * time.Minute

var (
	dryRun       bool
	counterValue int64
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Schema and seed tooling for the job files store",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var postgresCmd = &cobra.Command{
	Use:   "postgres",
	Short: "Apply the postgres schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}

		if dryRun {
			scripts, err := postgres.Migrations()
			if err != nil {
				return err
			}
			log.Info("Dry run mode - printing migration SQL without executing")
			for _, m := range scripts {
				fmt.Fprintf(os.Stdout, "-- %s\n%s\n", m.Name, m.SQL)
			}
			return nil
		}

		db, err := postgres.NewDB(cfg, log)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
		defer cancel()

		log.Infow("Running database migrations...", "host", cfg.Postgres.Host)
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		log.Info("Migration completed successfully")
		return nil
	},
}

var dynamodbCmd = &cobra.Command{
	Use:   "dynamodb",
	Short: "Create the dynamodb tables when missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		cfg.Storage.Backend = types.StoreBackendDynamoDB

		client, err := dynamodb.NewClient(cfg, log)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
		defer cancel()

		if err := client.EnsureTables(ctx, log); err != nil {
			return err
		}
		log.Infow("Tables ready",
			"document_table", client.DocumentTable(),
			"counter_table", client.CounterTable())
		return nil
	},
}

var initCounterCmd = &cobra.Command{
	Use:   "init-counter",
	Short: "Create the invoice counter if it does not exist yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}

		sentrySvc := sentry.NewSentryService(cfg, log)
		params := repository.RepositoryParams{
			Config: cfg,
			Logger: log,
			Sentry: sentrySvc,
		}

		switch cfg.Storage.Backend {
		case types.StoreBackendPostgres:
			db, err := postgres.NewDB(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()
			params.DB = db
		case types.StoreBackendDynamoDB:
			client, err := dynamodb.NewClient(cfg, log)
			if err != nil {
				return err
			}
			params.Dynamo = client
		}

		counters, err := repository.NewCounterRepository(params)
		if err != nil {
			return err
		}

		sequenceService := service.NewSequenceService(service.ServiceParams{
			Logger:      log,
			Config:      cfg,
			Sentry:      sentrySvc,
			CounterRepo: counters,
		})

		ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
		defer cancel()

		txn, ctx := sentrySvc.StartTransaction(ctx, "migrate.init_counter")
		created, err := sequenceService.InitCounter(ctx, counterValue)
		if err != nil {
			sentry.FinishSpan(txn, err)
			return err
		}
		preview, err := sequenceService.Preview(ctx)
		sentry.FinishSpan(txn, err)
		if err != nil {
			return err
		}
		log.Infow("Invoice counter ready",
			"created", created,
			"last_issued", preview.LastIssued,
			"next_expected", preview.NextExpected)
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash for auth.admin.password_hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hashed, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hashed)
		return nil
	},
}

func bootstrap() (*config.Configuration, *logger.Logger, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

func init() {
	postgresCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print migration SQL without executing it")
	initCounterCmd.Flags().Int64Var(&counterValue, "value", 0, "Value of the last issued invoice number")

	rootCmd.AddCommand(postgresCmd, dynamodbCmd, initCounterCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
