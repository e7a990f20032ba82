package common

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	arborcommon "github.com/ternarybob/arbor/common"
	"github.com/ternarybob/arbor/models"
)

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

// GetLogger returns the global logger instance.
// If InitLogger/SetupLogger hasn't run yet, returns a fallback console logger.
func GetLogger() arbor.ILogger {
	loggerMutex.RLock()
	if globalLogger != nil {
		loggerMutex.RUnlock()
		return globalLogger
	}
	loggerMutex.RUnlock()

	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if globalLogger == nil {
		globalLogger = arbor.NewLogger().WithConsoleWriter(createWriterConfig(nil, models.LogWriterTypeConsole, ""))
		globalLogger.Warn().Msg("using fallback logger - SetupLogger should run during startup")
	}
	return globalLogger
}

// InitLogger stores the provided logger as the global singleton instance.
func InitLogger(logger arbor.ILogger) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	globalLogger = logger
}

// SetupLogger configures and installs the global logger from config.
func SetupLogger(config *Config) arbor.ILogger {
	logger := arbor.NewLogger()

	hasFile := false
	hasConsole := false
	for _, output := range config.Logging.Output {
		switch output {
		case "file":
			hasFile = true
		case "stdout", "console":
			hasConsole = true
		}
	}

	if hasFile {
		logPath := config.Logging.FilePath
		if logPath == "" {
			execPath, err := os.Executable()
			if err != nil {
				logger = logger.WithConsoleWriter(createWriterConfig(config, models.LogWriterTypeConsole, ""))
				logger.Warn().Err(err).Msg("failed to resolve executable path - skipping file log")
				hasFile = false
			} else {
				logPath = filepath.Join(filepath.Dir(execPath), "logs", "jobworker.log")
			}
		}
		if hasFile {
			if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
				tmp := logger.WithConsoleWriter(createWriterConfig(config, models.LogWriterTypeConsole, ""))
				tmp.Warn().Err(err).Str("path", logPath).Msg("failed to create log directory")
			} else {
				logger = logger.WithFileWriter(createWriterConfig(config, models.LogWriterTypeFile, logPath))
			}
		}
	}

	if hasConsole || !hasFile {
		logger = logger.WithConsoleWriter(createWriterConfig(config, models.LogWriterTypeConsole, ""))
	}

	logger = logger.WithLevelFromString(config.Logging.Level)

	InitLogger(logger)
	return logger
}

func createWriterConfig(config *Config, writerType models.LogWriterType, filename string) models.WriterConfiguration {
	timeFormat := "15:04:05.000"
	if config != nil && config.Logging.TimeFormat != "" {
		timeFormat = config.Logging.TimeFormat
	}

	return models.WriterConfiguration{
		Type:             writerType,
		FileName:         filename,
		TimeFormat:       timeFormat,
		DisableTimestamp: false,
		MaxSize:          100 * 1024 * 1024,
		MaxBackups:       3,
	}
}

// Stop flushes any remaining buffered logs before process exit.
func Stop() {
	arborcommon.Stop()
}
