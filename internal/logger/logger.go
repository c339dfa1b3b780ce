package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *zap.SugaredLogger

// Init initializes the global logger. Uses the production JSON encoder
// unless APP_ENV=development, which switches to the readable console output.
func Init() {
	if os.Getenv("APP_ENV") == "development" {
		InitDev()
		return
	}

	config := zap.NewProductionConfig()

	// Set more readable time format
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	// Use SugaredLogger for easier key-value logging
	Log = logger.Sugar()
}

// InitDev initializes the logger in development mode (more readable output)
func InitDev() {
	config := zap.NewDevelopmentConfig()

	logger, err := config.Build()
	if err != nil {
		panic(err)
	}

	Log = logger.Sugar()
}

// Sync flushes buffered logs
func Sync() {
	if Log != nil {
		Log.Sync()
	}
}
