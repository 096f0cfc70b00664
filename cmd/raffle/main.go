// Command raffle drives the raffle API from the terminal.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/raffle/internal/adapters/http/client"
	"github.com/okian/raffle/internal/adapters/tokenstore"
	service "github.com/okian/raffle/internal/app"
	"github.com/okian/raffle/internal/config"
	"github.com/okian/raffle/pkg/logger"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env is what every command runs against.
type env struct {
	cfg    *config.Config
	svc    *service.Service
	tokens tokenstore.Store
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := logger.InitWithWriter(stderr); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitError
	}

	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stderr)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}
	cmd, ok := lookup(args[0])
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return exitUsage
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config:", err)
		return exitError
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	tokens, closeTokens, err := openTokenStore(ctx, cfg)
	if err != nil {
		fmt.Fprintln(stderr, "failed to open token store:", err)
		return exitError
	}
	defer closeTokens()

	e := &env{
		cfg:    cfg,
		tokens: tokens,
		stderr: stderr,
		svc: service.New(client.New(cfg.APIBase,
			client.WithTokenStore(tokens),
			client.WithTokenKey(cfg.TokenKey),
		)),
	}

	out, err := cmd.run(ctx, e, args[1:])
	switch {
	case errors.Is(err, errUsage):
		return exitUsage
	case err != nil:
		fmt.Fprintln(stderr, "error:", err)
		if status, ok := client.StatusCode(err); ok && status == http.StatusUnauthorized {
			fmt.Fprintln(stderr, "hint: run `raffle login` first")
		}
		return exitError
	}
	if out == nil {
		return exitOK
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitError
	}
	return exitOK
}

// openTokenStore returns the store selected by cfg and its release func.
func openTokenStore(ctx context.Context, cfg *config.Config) (tokenstore.Store, func(), error) {
	switch cfg.TokenStore {
	case config.TokenStoreNone:
		return tokenstore.NewNoop(), func() {}, nil
	case config.TokenStoreMemory:
		return tokenstore.NewMemory(), func() {}, nil
	default:
		s, err := tokenstore.OpenSQLite(ctx, cfg.TokenStorePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
}
