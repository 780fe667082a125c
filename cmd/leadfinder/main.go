package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"

	"leadfinder/cmd/internal/config"
	"leadfinder/cmd/internal/console"
	"leadfinder/cmd/internal/utils/validators"
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := console.New(os.Stdout)

	name, rest := "", []string(nil)
	if len(args) > 0 {
		name, rest = args[0], args[1:]
	}

	cmd, ok := lookupCommand(name)
	if !ok {
		out.Failure("Unknown command: %s", name)
		printHelp(out)
		return 2
	}

	if cmd.local {
		if err := cmd.run(ctx, &app{out: out}, rest); err != nil {
			out.Error(err)
			return 1
		}
		return 0
	}

	validate := validator.New()
	validators.Register(validate)

	// Loads env vars depending on environment
	if config.IsProduction() {
		if err := loadProdEnv(ctx); err != nil {
			out.Error(err)
			return 1
		}
	}

	cfg, err := config.Load(validate)
	if err != nil {
		out.Error(err)
		return 1
	}

	a, err := newApp(ctx, cfg, validate, out)
	if err != nil {
		out.Error(fmt.Errorf("initialize: %w", err))
		return 1
	}
	defer a.close()

	err = cmd.run(ctx, a, rest)
	switch {
	case err == nil:
		return 0
	case ctx.Err() != nil && errors.Is(err, context.Canceled):
		out.Warn("\nOperation cancelled by user.")
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		out.Error(err)
		return 1
	}
}

// loadProdEnv exports the AWS SSM parameters under the application prefix
// into the environment before the configuration is read.
func loadProdEnv(ctx context.Context) error {
	client, err := config.NewSSMClient(ctx, os.Getenv("AWS_REGION"))
	if err != nil {
		return err
	}

	if _, err = config.ExportParameters(ctx, client, config.ParamsPrefix); err != nil {
		return err
	}
	return nil
}
