package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DeRuina/timberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rfid-attendance/internal/config"
)

// Options configures New. Output is optional and replaces the rotating file
// writer when set.
type Options struct {
	Level      string
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
	Env        string
	Output     zapcore.WriteSyncer
}

// FromConfig maps the application config onto logger options.
func FromConfig(cfg config.App) Options {
	return Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
		Env:        cfg.Env,
	}
}

// Bootstrap returns a warn-level console logger on w (stderr when nil) for
// use before the configured logger exists.
func Bootstrap(w zapcore.WriteSyncer) *zap.Logger {
	if w == nil {
		w = zapcore.Lock(os.Stderr)
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, w, zapcore.WarnLevel)).Named("bootstrap")
}

// New builds the application logger: a colored console core teed with a JSON
// core written to a timberjack-rotated file.
func New(opts Options) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] invalid log level %q, defaulting to info\n", opts.Level)
		level = zapcore.InfoLevel
	}

	fileSyncer := opts.Output
	if fileSyncer == nil {
		if opts.File == "" {
			return nil, fmt.Errorf("log file path is empty")
		}
		if dir := filepath.Dir(opts.File); dir != "." && dir != "/" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create log dir %s: %w", dir, err)
			}
		}
		fileSyncer = zapcore.AddSync(&timberjack.Logger{
			Filename:         opts.File,
			MaxSize:          opts.MaxSize,
			MaxBackups:       opts.MaxBackups,
			MaxAge:           opts.MaxAge,
			Compress:         opts.Compress,
			LocalTime:        true,
			RotationInterval: 24 * time.Hour,
		})
	}

	consoleCfg, fileCfg := encoderConfigs()
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), fileSyncer, level),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if opts.Env != "" {
		logger = logger.With(zap.String("env", opts.Env))
	}
	return logger, nil
}

func encoderConfigs() (zapcore.EncoderConfig, zapcore.EncoderConfig) {
	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleCfg.EncodeCaller = zapcore.ShortCallerEncoder

	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.TimeKey = "timestamp"
	fileCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	fileCfg.EncodeCaller = zapcore.ShortCallerEncoder
	return consoleCfg, fileCfg
}
