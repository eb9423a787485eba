package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path"

	"github.com/google/subcommands"

	"finledger/internal/backend"
	"finledger/internal/cli"
	"finledger/internal/log"
	"finledger/internal/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	cfg := cli.LoadConfig()
	logger := cli.SetupLogger(os.Stderr, cfg.LogLevel, log.ComponentCLI)
	cli.ValidateConfig(logger, cfg)

	ctx := log.WithContext(context.Background(), logger)
	ledger, err := cli.OpenLedger(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open ledger", log.FieldError, err)
		return 1
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Warn("Failed to close ledger", log.FieldError, err)
		}
	}()

	var publisher services.BalancePublisher
	if client := cli.ConnectAMQP(logger, cfg); client != nil {
		defer client.Close()
		publisher = client
	}

	commander := newCommander(flag.CommandLine, path.Base(os.Args[0]), newEnv(ledger, publisher, os.Stdout))
	flag.Parse()
	return int(commander.Execute(ctx))
}

// env is what every command runs against.
type env struct {
	ledger  *backend.Ledger
	service *services.OperationService
	out     io.Writer
}

func newEnv(ledger *backend.Ledger, publisher services.BalancePublisher, out io.Writer) *env {
	return &env{
		ledger:  ledger,
		service: services.NewOperationService(ledger.Operations, publisher),
		out:     out,
	}
}

func newCommander(topLevel *flag.FlagSet, name string, e *env) *subcommands.Commander {
	commander := subcommands.NewCommander(topLevel, name)
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	for _, c := range []subcommands.Command{
		&accountsCmd{env: e},
		&accountAddCmd{env: e},
		&recalcCmd{env: e},
	} {
		commander.Register(c, "accounts")
	}
	for _, c := range []subcommands.Command{
		&categoriesCmd{env: e},
		&categoryAddCmd{env: e},
	} {
		commander.Register(c, "categories")
	}
	for _, c := range []subcommands.Command{
		&operationsCmd{env: e},
		&opAddCmd{env: e},
		&opRmCmd{env: e},
	} {
		commander.Register(c, "operations")
	}
	commander.Register(&reportCmd{env: e}, "analytics")
	return commander
}
