package main

import (
	"log/slog"

	"github.com/dargueta/blocksim/model"
	"github.com/dargueta/blocksim/snapshot"
	"github.com/dargueta/blocksim/storage"
	"github.com/urfave/cli/v2"
)

const sessionKey = "session"

// session is the state shared by every command of one invocation.
type session struct {
	logger *slog.Logger
	state  *snapshot.File
	fs     *model.Filesystem
}

// openSession loads the state file named by the global flags and rebuilds the
// file system from it.
func openSession(c *cli.Context) (*session, error) {
	logger, err := newLogger(c.App.ErrWriter, c.String("log-level"))
	if err != nil {
		return nil, err
	}

	host, err := storage.NewHost(c.String("root"))
	if err != nil {
		return nil, err
	}

	file := snapshot.NewFile(c.String("state"))
	state, err := file.Load()
	if err != nil {
		return nil, err
	}

	fs, err := model.FromSnapshot(state, host, model.Options{})
	if err != nil {
		return nil, err
	}
	logger.Debug(
		"loaded state",
		slog.String("path", file.Path),
		slog.String("storage_root", host.Root()),
		slog.String("summary", fs.String()))
	return &session{logger: logger, state: file, fs: fs}, nil
}

func currentSession(c *cli.Context) *session {
	return c.App.Metadata[sessionKey].(*session)
}

// save writes the state file if anything changed.
func (s *session) save() error {
	written, err := s.state.Save(s.fs.Snapshot())
	if err != nil {
		s.logger.Error("failed to save state", slog.String("path", s.state.Path), slog.Any("error", err))
		return err
	}
	if written {
		s.logger.Debug("saved state", slog.String("path", s.state.Path))
	}
	return nil
}

// mutating wraps a command that changes the file system so the state file is
// saved once it succeeds.
func mutating(action func(c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s := currentSession(c)
		if err := action(c, s); err != nil {
			s.logger.Info(
				"command failed",
				slog.String("command", c.Command.Name),
				slog.Any("error", err))
			return err
		}
		s.logger.Info("command succeeded", slog.String("command", c.Command.Name))
		return s.save()
	}
}

// reading wraps a command that only inspects the file system.
func reading(action func(c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		return action(c, currentSession(c))
	}
}
