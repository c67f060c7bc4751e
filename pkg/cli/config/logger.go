package config

import (
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

// Logger holds logger configuration
type Logger struct {
	Level  string
	JSON   bool
	Output string

	file *os.File
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("RELWATCH_LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:        "log-json",
			Usage:       "Output logs in JSON format",
			Value:       false,
			Destination: &c.JSON,
			Sources:     cli.EnvVars("RELWATCH_LOG_JSON"),
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output: stdout, stderr, or a file path (also written to stdout)",
			Value:       "stdout",
			Destination: &c.Output,
			Sources:     cli.EnvVars("RELWATCH_LOG_OUTPUT"),
		},
	}
}

var githubTokenPattern = regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{20,}`)

// redactor hides webhook URLs and tokens from log output
func redactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithTag("secret"),
		masq.WithContain("/api/webhooks/"),
		masq.WithContain("hooks.slack.com/"),
		masq.WithRegex(githubTokenPattern),
	)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, goerr.New("invalid log level", goerr.V("level", s))
	}
}

// Configure configures and returns a logger
func (c *Logger) Configure() (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	var w io.Writer = os.Stdout
	useColor := isatty.IsTerminal(os.Stdout.Fd())
	switch c.Output {
	case "", "stdout", "-":
	case "stderr":
		w = os.Stderr
		useColor = isatty.IsTerminal(os.Stderr.Fd())
	default:
		f, err := os.OpenFile(c.Output, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", c.Output))
		}
		c.file = f
		w = io.MultiWriter(os.Stdout, f)
		useColor = false
	}

	var handler slog.Handler
	if c.JSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: redactor(),
		})
	} else {
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithColor(useColor),
			clog.WithReplaceAttr(redactor()),
		)
	}

	return slog.New(handler), nil
}

// Close releases the log file, if any
func (c *Logger) Close() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	return err
}
