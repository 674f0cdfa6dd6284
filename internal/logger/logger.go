// Package logger builds the process-wide zerolog logger from configuration.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// debugLogPath receives a full copy of the console output in dev+debug mode.
const debugLogPath = "logs/debug.log"

type Config struct {
	Level              string         `mapstructure:"level" json:"level,omitempty" validate:"oneof=trace debug info warn error"`
	Format             string         `mapstructure:"format" json:"format,omitempty" validate:"oneof=json console"`
	OutputTarget       string         `mapstructure:"output_target" json:"outputTarget,omitempty" validate:"oneof=stdout stderr"`
	TimeField          string         `mapstructure:"time_field" json:"timeField,omitempty"`
	TimeFormat         string         `mapstructure:"time_format" json:"timeFormat,omitempty" validate:"oneof=rfc3339 rfc3339nano unix unix_ms"`
	ServiceName        string         `mapstructure:"service_name" json:"serviceName,omitempty"`
	ServiceVersion     string         `mapstructure:"service_version" json:"serviceVersion,omitempty"`
	Env                string         `mapstructure:"env" json:"env,omitempty" validate:"oneof=dev test staging prod"`
	WithCaller         bool           `mapstructure:"with_caller" json:"withCaller,omitempty"`
	Stacktrace         bool           `mapstructure:"stacktrace" json:"stacktrace,omitempty"`
	StacktraceMinLevel string         `mapstructure:"stacktrace_min_level" json:"stacktraceMinLevel,omitempty" validate:"oneof=debug info warn error fatal panic"`
	Fields             map[string]any `mapstructure:"fields" json:"fields,omitempty"`
}

// New validates cfg (after filling defaults) and returns a logger tagged with service
// metadata. It also sets the zerolog global level, so call it once at startup.
func New(cfg *Config) (zerolog.Logger, error) {
	cfg.setDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return zerolog.Nop(), fmt.Errorf("logger config validation error: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	zerolog.TimestampFieldName = cfg.TimeField
	zerolog.TimeFieldFormat = timeFieldFormat(cfg.TimeFormat)

	logger := zerolog.New(cfg.writer()).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("version", cfg.ServiceVersion).
		Str("env", cfg.Env).
		Logger()

	if cfg.WithCaller {
		logger = logger.With().Caller().Logger()
	}
	if cfg.Stacktrace {
		logger = logger.With().Stack().Logger()
	}
	if len(cfg.Fields) > 0 {
		logger = logger.With().Fields(cfg.Fields).Logger()
	}

	zerolog.SetGlobalLevel(level)
	return logger, nil
}

// writer picks the sink: JSON for machines, console for humans, and in dev+debug a
// file copy as well. Failing to open the file is not fatal.
func (c *Config) writer() io.Writer {
	var out io.Writer = os.Stdout
	if c.OutputTarget == "stderr" {
		out = os.Stderr
	}
	if c.Format == "json" {
		return out
	}

	console := zerolog.ConsoleWriter{Out: out, TimeFormat: timeFieldFormat(c.TimeFormat)}
	if c.Env != "dev" || c.Level != "debug" {
		return console
	}

	if err := os.MkdirAll(filepath.Dir(debugLogPath), 0o755); err != nil {
		return console
	}
	file, err := os.OpenFile(debugLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return console
	}
	return zerolog.MultiLevelWriter(console, file)
}

// timeFieldFormat maps config names onto zerolog's layout constants.
func timeFieldFormat(name string) string {
	switch name {
	case "rfc3339":
		return "2006-01-02T15:04:05Z07:00"
	case "unix":
		return zerolog.TimeFormatUnix
	case "unix_ms":
		return zerolog.TimeFormatUnixMs
	default:
		return "2006-01-02T15:04:05.999999999Z07:00"
	}
}

func (c *Config) setDefaults() {
	if c.Env == "" {
		c.Env = "prod"
	}
	dev := c.Env == "dev"

	if c.Level == "" {
		c.Level = "info"
		if dev {
			c.Level = "debug"
		}
	}
	if c.Format == "" {
		c.Format = "json"
		if dev {
			c.Format = "console"
		}
	}
	if c.OutputTarget == "" {
		c.OutputTarget = "stdout"
	}
	if c.TimeField == "" {
		c.TimeField = "ts"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = "rfc3339nano"
	}
	if !c.WithCaller && dev {
		c.WithCaller = true
	}
	if !c.Stacktrace && !dev {
		c.Stacktrace = true
	}
	if c.StacktraceMinLevel == "" {
		c.StacktraceMinLevel = "error"
	}
	if c.ServiceName == "" {
		c.ServiceName = "taskboard-service"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "0.1.0"
	}
	if c.Fields == nil {
		c.Fields = make(map[string]any)
	}
}
