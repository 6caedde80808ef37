package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"chefmenu/internal/config"
	"chefmenu/internal/core"
	"chefmenu/internal/session"
	"chefmenu/pkg/domain"
)

// cliEnv lazily opens what a command needs and releases it afterwards.
type cliEnv struct {
	stdout io.Writer
	stderr io.Writer

	cfg   *config.Config
	log   *logrus.Logger
	store domain.KVStore
}

type usageError struct{ err error }

func (u usageError) Error() string { return u.err.Error() }

func isUsage(err error) bool {
	var u usageError
	return errors.As(err, &u)
}

// parse wraps flag errors so run can map them to exit code 2.
func (e *cliEnv) parse(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(e.stderr)
	if err := fs.Parse(args); err != nil {
		return usageError{err}
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(e.stderr, "unexpected arguments: %v\n", fs.Args())
		return usageError{fmt.Errorf("unexpected arguments")}
	}
	return nil
}

func (e *cliEnv) config() (*config.Config, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}
	cfg, err := config.NewFromEnv()
	if err != nil {
		return nil, err
	}
	e.cfg = cfg
	e.log = cfg.Log.NewLogger()
	e.log.SetOutput(e.stderr)
	return cfg, nil
}

// repository opens the configured store and seeds it when it has never been
// written.
func (e *cliEnv) repository(ctx context.Context, opts ...core.Option) (*core.Repository, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	store, err := core.OpenKVStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	e.store = store
	opts = append([]core.Option{core.WithLogger(core.NewLogrusLogger(e.log))}, opts...)
	repo := core.NewRepository(core.NewRecordStore(store), opts...)
	// a first run seeds the defaults before any command reads or writes
	if _, err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (e *cliEnv) gate() (*session.Gate, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	if err := cfg.Auth.RequireAdmin(); err != nil {
		return nil, err
	}
	verifier, err := session.NewBcryptVerifier(cfg.Auth.AdminUser, cfg.Auth.AdminPasswordHash)
	if err != nil {
		return nil, err
	}
	return session.NewGate(verifier), nil
}

// login passes the gate with the -user/-password flags of a mutating command.
func (e *cliEnv) login(ctx context.Context, user, password string) (*session.Session, error) {
	gate, err := e.gate()
	if err != nil {
		return nil, err
	}
	s := &session.Session{}
	if err := gate.Attempt(ctx, s, user, password); err != nil {
		return nil, err
	}
	return s, s.RequireLogin()
}

func (e *cliEnv) close() {
	if e.store == nil {
		return
	}
	if err := core.CloseKVStore(e.store); err != nil && e.log != nil {
		e.log.WithError(err).Warn("close store")
	}
}
