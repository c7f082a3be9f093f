package cmd

import (
	"go.uber.org/zap"

	"github.com/sarchlab/wrapgen/design"
	"github.com/sarchlab/wrapgen/server"
	"github.com/sarchlab/wrapgen/wrapper"
)

const defaultLogLevel = "warn"

var logger = zap.NewNop()

// newLogger builds a development logger for debug output and a production
// logger otherwise.
func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		level = defaultLogLevel
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	if lvl.Level() == zap.DebugLevel {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = lvl

	return config.Build()
}

func setupLogging(level string) error {
	l, err := newLogger(level)
	if err != nil {
		return err
	}

	design.SetLogger(l)
	wrapper.SetLogger(l)
	server.SetLogger(l)
	logger = l

	return nil
}
