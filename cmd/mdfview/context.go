package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mdfview/internal/config"
	"mdfview/internal/logging"
	"mdfview/internal/services"
	"mdfview/internal/session"
	_ "mdfview/internal/sqlstore"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// log returns the configured logger, falling back to a no-op logger when the
// log file cannot be opened.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

// withSession opens path, runs fn and closes the session.
func (c *commandContext) withSession(cmd *cobra.Command, path string, fn func(context.Context, *session.Session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sess, err := session.Open(ctx, cfg, path, c.log())
	if err != nil {
		return userError(err)
	}
	defer func() {
		_ = sess.Close(ctx)
	}()
	ctx = sess.Context(ctx)
	if err := fn(ctx, sess); err != nil {
		return userError(err)
	}
	return nil
}

// cliError shows the short user message while keeping the full chain for
// errors.Is checks.
type cliError struct {
	msg string
	err error
}

func (e *cliError) Error() string { return e.msg }
func (e *cliError) Unwrap() error { return e.err }

func userError(err error) error {
	if err == nil {
		return nil
	}
	var already *cliError
	if errors.As(err, &already) {
		return err
	}
	return &cliError{msg: services.UserMessage(err), err: err}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
