// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/juju/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"

	timeLayout = "2006-01-02 15:04:05.999999"
)

// Standard output carries the run summary, so logs go to standard error.
var stderr io.Writer = os.Stderr

var logger = newLogger(zapcore.NewConsoleEncoder(encoderConfig(true)), zap.DebugLevel, os.Stderr)

// Logger get current logger
func Logger() *zap.Logger {
	return logger
}

func AddFlags(flagSet *pflag.FlagSet) {
	flagSet.String("log-format", FormatConsole, "format of logs on standard error (console or json)")
	flagSet.String("log-path", "", "path of log file, always written as json")
	flagSet.Int("log-max-size", 100, "maximum size in megabytes of the log file")
	flagSet.Int("log-max-age", 0, "maximum number of days to retain old log files")
	flagSet.Int("log-max-backups", 0, "maximum number of old log files to retain")
}

// SetLogger replaces the logger according to log flags. Debug lowers the level
// from info to debug.
func SetLogger(flagSet *pflag.FlagSet, debug bool) error {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	format, _ := flagSet.GetString("log-format")
	var encoder zapcore.Encoder
	switch format {
	case FormatConsole:
		encoder = zapcore.NewConsoleEncoder(encoderConfig(debug))
	case FormatJSON:
		encoder = zapcore.NewJSONEncoder(encoderConfig(false))
	default:
		return errors.NotValidf("log format %q", format)
	}
	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.AddSync(stderr), level)}
	if path, _ := flagSet.GetString("log-path"); path != "" {
		maxSize, _ := flagSet.GetInt("log-max-size")
		maxAge, _ := flagSet.GetInt("log-max-age")
		maxBackups, _ := flagSet.GetInt("log-max-backups")
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig(false)),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   path,
				MaxSize:    maxSize,
				MaxBackups: maxBackups,
				MaxAge:     maxAge,
			}),
			level))
	}
	logger = zap.New(zapcore.NewTee(cores...))
	return nil
}

func encoderConfig(development bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	if development {
		cfg = zap.NewDevelopmentEncoderConfig()
	}
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	return cfg
}

func newLogger(encoder zapcore.Encoder, level zapcore.Level, w io.Writer) *zap.Logger {
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level))
}

const mysqlPrefix = "mysql://"

// RedactDBURL masks the user name and password of a data source URL so it can
// be logged. Text that does not parse is returned unchanged.
func RedactDBURL(rawURL string) string {
	if dsn, ok := strings.CutPrefix(rawURL, mysqlPrefix); ok {
		parsed, err := mysql.ParseDSN(dsn)
		if err != nil {
			return rawURL
		}
		parsed.User = mask(parsed.User)
		parsed.Passwd = mask(parsed.Passwd)
		return mysqlPrefix + parsed.FormatDSN()
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.User == nil {
		return rawURL
	}
	password, _ := parsed.User.Password()
	parsed.User = url.UserPassword(mask(parsed.User.Username()), mask(password))
	return parsed.String()
}

func mask(s string) string {
	return strings.Repeat("x", len(s))
}
