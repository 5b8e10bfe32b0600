// Command orderctl manages customers and orders from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appkg "github.com/xenking/order-entry/internal/app"
	"github.com/xenking/order-entry/internal/domain/order"
	"github.com/xenking/order-entry/internal/storage/postgres"
)

// env holds the dependencies shared by all commands.
type env struct {
	lg        *zap.Logger
	pool      *pgxpool.Pool
	customers *postgres.CustomerRepository
	products  *postgres.ProductRepository
	orders    *order.Service
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	lg, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return lg
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	e := &env{}
	app := &cli.App{
		Name:  "orderctl",
		Usage: "manage customers, products and orders",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "database-url",
				Usage: "PostgreSQL connection URL (default from ORDERENTRY_DATABASE_URL or DATABASE_URL)",
			},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Before: func(c *cli.Context) error {
			return e.open(c)
		},
		After: func(*cli.Context) error {
			e.close()
			return nil
		},
		Commands: []*cli.Command{
			migrateCommand(e),
			seedCommand(e),
			customersCommand(e),
			productsCommand(e),
			ordersCommand(e),
			reportCommand(e),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		var ve *order.ValidationError
		if errors.As(err, &ve) {
			for _, p := range ve.Problems {
				fmt.Fprintln(os.Stderr, "-", p)
			}
		}
		if e.lg != nil {
			e.lg.Error("Command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func (e *env) open(c *cli.Context) error {
	e.lg = newLogger(c.Bool("verbose"))

	if url := c.String("database-url"); url != "" {
		if err := os.Setenv("ORDERENTRY_DATABASE_URL", url); err != nil {
			return errors.Wrap(err, "set database url")
		}
	}
	cfg, err := appkg.LoadConfig()
	if err != nil {
		return err
	}

	e.pool, err = postgres.NewPool(c.Context, cfg.Pool())
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	e.customers = postgres.NewCustomerRepository(e.pool)
	e.products = postgres.NewProductRepository(e.pool)
	e.orders = order.NewService(e.customers, e.products, postgres.NewOrderRepository(e.pool))
	return nil
}

func (e *env) close() {
	if e.pool != nil {
		e.pool.Close()
	}
	if e.lg != nil {
		_ = e.lg.Sync()
	}
}

func migrateCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending schema migrations",
		Action: func(c *cli.Context) error {
			return postgres.Migrate(c.Context, e.pool, e.lg)
		},
	}
}

func seedCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "load demo customers, products and orders into an empty database",
		Action: func(c *cli.Context) error {
			seeded, err := postgres.Seed(c.Context, e.pool)
			if err != nil {
				return err
			}
			if !seeded {
				e.lg.Info("Database already has customers, nothing seeded")
				return nil
			}
			e.lg.Info("Demo data loaded")
			return nil
		},
	}
}
