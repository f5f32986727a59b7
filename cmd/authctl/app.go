package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/redmonkez12/go-auth-service/cmd/authctl/ui"
	"github.com/redmonkez12/go-auth-service/internal/config"
	"github.com/redmonkez12/go-auth-service/internal/database"
	"github.com/redmonkez12/go-auth-service/internal/logging"
	"github.com/redmonkez12/go-auth-service/internal/user"
)

// app holds the collaborators of every subcommand so tests can swap them.
type app struct {
	out          io.Writer
	loadConfig   func() (*config.Config, error)
	openStore    func(ctx context.Context, cfg *config.Config, logger *logging.Logger) (user.Store, func(), error)
	readPassword func(prompt string) (string, error)
	runForm      func() (*ui.NewUserInput, error)
	logger       *logging.Logger
}

func defaultApp() *app {
	return &app{
		out:          os.Stdout,
		loadConfig:   config.Load,
		openStore:    openStore,
		readPassword: readPassword,
		runForm:      ui.RunCreateUserForm,
		logger:       logging.NewLogger(true),
	}
}

// openStore connects to the configured user store. With Redis enabled the
// store sits behind the same user cache as the API, so admin writes
// invalidate cached entries.
func openStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (user.Store, func(), error) {
	var (
		store   user.Store
		closers []func()
	)

	if cfg.Database.Driver == config.DriverMemory {
		store = user.NewMemoryRepository()
	} else {
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = db.Close() })
		store = user.NewRepository(db)
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Redis.Enabled {
		client, err := database.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		store = user.NewCachedRepository(store, client, cfg.Redis.UserCacheTTL, logger)
	}

	return store, cleanup, nil
}

// readPassword prompts without echo on a terminal and reads a line otherwise.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
