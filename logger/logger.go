package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config defines the configuration options for the logger.
type Config struct {
	// LogLevel sets the minimum enabled logging level. Valid levels are
	// "debug", "info", "warn" and "error".
	LogLevel string

	// LogFile is the path of the rotated log file. Empty disables file output.
	LogFile string

	// LogFileSize is the maximum size in megabytes of the log file before it gets
	// rotated. It defaults to 10 megabytes.
	LogFileSize int

	// LogFileCount is the maximum number of old log files to retain.
	// The default is 5.
	LogFileCount uint8

	// LogCompress determines if the rotated log files should be compressed
	// using gzip.
	LogCompress bool

	// LogColorize enables output with colors
	LogColorize bool

	// TimeFormat sets the format for timestamps. Valid shortcuts are
	// "rfc3339", "iso8601", "rfc1123", "rfc822" and "rfc850".
	TimeFormat string

	// TimeZone sets the time zone used for timestamps ("local", "utc" or an IANA name).
	TimeZone string

	// LogToFileOnly disables logging to stdout.
	LogToFileOnly bool
}

const (
	StatusDebug   = "debug"
	StatusInfo    = "info"
	StatusWarning = "warn"
	StatusError   = "error"
	StatusFatal   = "fatal"

	StrResource = "resource"
	StrEndpoint = "endpoint"
	StrMethod   = "method"
	StrStatus   = "status"
	StrMode     = "mode"
	StrID       = "id"
	StrSession  = "session"
	StrQuery    = "query"
	StrSeq      = "seq"
	StrTotal    = "total"
	StrFile     = "file"
	StrClient   = "client"
	StrField    = "field"
)

var (
	log        = zerolog.New(os.Stdout).With().Timestamp().Logger()
	timeFormat = time.RFC3339Nano
	timeZone   = *time.Local
)

// InitLogger initializes the global logger based on the provided Config.
func InitLogger(config Config) {
	if config.LogFileSize == 0 {
		config.LogFileSize = 10
	}
	if config.LogFileCount == 0 {
		config.LogFileCount = 5
	}
	switch strings.ToLower(config.TimeFormat) {
	case "rfc3339", "":
		timeFormat = time.RFC3339Nano
	case "iso8601":
		timeFormat = "2006-01-02T15:04:05.000Z0700"
	case "rfc1123":
		timeFormat = time.RFC1123
	case "rfc822":
		timeFormat = time.RFC822
	case "rfc850":
		timeFormat = time.RFC850
	default:
		timeFormat = config.TimeFormat
	}
	zerolog.TimeFieldFormat = timeFormat

	switch {
	case strings.EqualFold(config.TimeZone, "local"):
		timeZone = *time.Local
	case strings.EqualFold(config.TimeZone, "utc"):
		timeZone = *time.UTC
	case config.TimeZone != "":
		if loc, err := time.LoadLocation(config.TimeZone); err == nil {
			timeZone = *loc
		}
	}
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().In(&timeZone)
	}

	level := parseLevel(config.LogLevel)

	var writers []io.Writer
	if !config.LogToFileOnly || config.LogFile == "" {
		if config.LogColorize {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat})
		} else {
			writers = append(writers, os.Stdout)
		}
	}
	if config.LogFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   config.LogFile,
			MaxSize:    config.LogFileSize, // megabytes
			MaxBackups: int(config.LogFileCount),
			MaxAge:     28, //days
			Compress:   config.LogCompress,
		})
	}

	zerolog.SetGlobalLevel(level)
	logctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp()
	if level == zerolog.DebugLevel {
		log = logctx.Caller().Logger()
	} else {
		log = logctx.Logger()
	}
}

// SetLevel changes the minimum level of all logging at runtime, e.g. after a
// config reload. Writers and format stay as initialized.
func SetLevel(lvl string) {
	zerolog.SetGlobalLevel(parseLevel(lvl))
}

func parseLevel(lvl string) zerolog.Level {
	switch strings.ToLower(lvl) {
	case StatusDebug:
		return zerolog.DebugLevel
	case StatusWarning, "warning":
		return zerolog.WarnLevel
	case StatusError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logtype returns a zerolog event for the given level name. Unknown levels log as info.
// skip is the number of additional caller frames to skip when the caller is reported.
func Logtype(typev string, skip int) *zerolog.Event {
	var logv *zerolog.Event
	switch typev {
	case StatusDebug:
		logv = log.Debug()
	case StatusError:
		logv = log.Error()
	case StatusFatal:
		logv = log.Fatal()
	case StatusWarning, "warning":
		logv = log.Warn()
	default:
		logv = log.Info()
	}
	if skip > 0 {
		logv.CallerSkipFrame(skip)
	}
	return logv
}

// LogDynamicany logs msg with alternating key/value pairs. Values that are not
// strings, ints, bools, durations or errors are logged with Any.
func LogDynamicany(typev string, msg string, fields ...any) {
	logv := Logtype(typev, 1)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch tt := fields[i+1].(type) {
		case string:
			logv.Str(key, tt)
		case int:
			logv.Int(key, tt)
		case uint64:
			logv.Uint64(key, tt)
		case bool:
			logv.Bool(key, tt)
		case time.Duration:
			logv.Dur(key, tt)
		case error:
			logv.AnErr(key, tt)
		default:
			logv.Any(key, tt)
		}
	}
	logv.Msg(msg)
}

// GetLogger returns the global logger.
func GetLogger() *zerolog.Logger {
	return &log
}

// GetTimeZone returns the configured time zone for timestamps.
func GetTimeZone() *time.Location {
	return &timeZone
}
