// Package main is the user center admin CLI. It works directly against the
// user center database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-platform/usercenter/config"
	"github.com/aura-platform/usercenter/internal/identity"
	"github.com/aura-platform/usercenter/internal/tenants"
	"github.com/aura-platform/usercenter/pkg/database"
)

// app holds the services commands run against; opened once per invocation.
type app struct {
	logger   *zap.Logger
	pool     *pgxpool.Pool
	tenants  *tenants.Service
	platform *tenants.PlatformService
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns:       2,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}, a.logger)
	if err != nil {
		return err
	}
	a.pool = pool

	tx := database.NewTxManager(pool)
	tenantRepo := tenants.NewRepository(pool)
	memberships := identity.NewMembershipRepository(pool)
	a.tenants = tenants.NewService(tenantRepo, tenants.NewOrgUnitRepository(pool), memberships, tx, a.logger)
	a.platform = tenants.NewPlatformService(tenantRepo, memberships, tx, a.logger)
	return nil
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func newRootCmd(a *app) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "ucctl",
		Short:         "User center administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				a.logger = newLogger(zapcore.DebugLevel)
			}
			return a.open(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	root.AddCommand(newTenantCmd(a), newPlatformCmd(a))
	return root
}

func main() {
	a := &app{logger: newLogger(zapcore.WarnLevel)}
	defer a.logger.Sync()

	err := newRootCmd(a).ExecuteContext(context.Background())
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(level zapcore.Level) *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
