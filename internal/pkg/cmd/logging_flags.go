package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty" // Check if running in a terminal.
	"go.uber.org/zap"            // Logging.
	"go.uber.org/zap/zapcore"
)

// LoggingFlags represents a set of flags for setting up logging.
type LoggingFlags struct {
	LogLevel zapcore.Level // Logging level.
}

// NewLoggingFlags returns a new LoggingFlags.
func NewLoggingFlags(app Flagger, logLevel string) *LoggingFlags {
	var f LoggingFlags

	app.Flag("log.level", "Set logging level.").
		HintOptions(
			zap.DebugLevel.String(),
			zap.InfoLevel.String(),
			zap.WarnLevel.String(),
			zap.ErrorLevel.String(),
		).
		Default(logLevel).
		SetValue(&f.LogLevel)

	return &f
}

// NewLogger returns a new logger based on the LogLevel flag.
// The zap dev config is used when running in a terminal, the prod
// config otherwise. The logger replaces the zap globals and captures
// the stdlib log.
func (f *LoggingFlags) NewLogger() *zap.Logger {
	var conf zap.Config
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		conf = zap.NewDevelopmentConfig()
	} else {
		conf = zap.NewProductionConfig()
	}
	conf.Level.SetLevel(f.LogLevel)

	logger, err := conf.Build()
	if err != nil {
		panic(fmt.Sprintf("error building logger: %s", err))
	}
	_ = zap.ReplaceGlobals(logger)
	_ = zap.RedirectStdLog(logger)
	return logger
}
