package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/BYTE-6D65/studyclock/pkg/config"
	"github.com/BYTE-6D65/studyclock/pkg/kvstore"
	"github.com/BYTE-6D65/studyclock/pkg/logs"
)

// app is the state every subcommand starts from.
type app struct {
	path   string
	cfg    *config.Config
	store  kvstore.Store
	logger *log.Logger
	closer io.Closer
}

// loadApp reads the configuration, configures logging and opens the
// key-value store. Logs go to stderr, or to the configured log file when
// toFile is set so they do not tear the TUI.
func loadApp(toFile bool) (*app, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	path = config.ExpandPath(path)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	a := &app{path: path, cfg: cfg}

	var out io.Writer = os.Stderr
	if toFile && cfg.LogFile != "" {
		f, err := logs.OpenFile(cfg.LogFile)
		if err != nil {
			return nil, err
		}
		out = f
		a.closer = f
	} else if toFile {
		out = io.Discard
	}
	if err := logs.Configure(cfg.LogLevel, out); err != nil {
		a.Close()
		return nil, err
	}
	a.logger = logs.NewLogger("studyclock")

	store, err := kvstore.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	a.store = store
	a.logger.Debugf("config %s, %s store", path, cfg.Store.Backend)
	return a, nil
}

// Close releases the store and the log file.
func (a *app) Close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
	}
	if a.closer != nil {
		if cerr := a.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
