package gologger

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-sites/internal/logging"
	"github.com/goliatone/go-sites/pkg/interfaces"
)

// Config carries the knobs the runtime config exposes for the go-logger
// backend. Zero values mean "library default".
type Config struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// Provider hands out namespaced go-logger children behind the module's
// LoggerProvider contract.
type Provider struct {
	root *glog.BaseLogger
}

var levelNames = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// NewProvider builds the go-logger root the module logs through. Format and
// level strings are validated here so misconfiguration surfaces at boot, not
// on the first log call.
func NewProvider(cfg Config) (*Provider, error) {
	var options []glog.Option

	if raw := strings.ToLower(strings.TrimSpace(cfg.Level)); raw != "" {
		if level, ok := levelNames[raw]; ok {
			options = append(options, glog.WithLevel(level))
		}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}

	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)

	var focus []string
	for _, name := range cfg.Focus {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			focus = append(focus, trimmed)
		}
	}
	if len(focus) > 0 {
		root.Focus(focus...)
	}

	return &Provider{root: root}, nil
}

// GetLogger satisfies interfaces.LoggerProvider. An empty name yields the
// root logger itself.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return wrap(p.root)
	}
	return wrap(p.root.GetLogger(name))
}

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &glogAdapter{inner: inner}
}

// glogAdapter bridges a go-logger child into the module's Logger contract.
type glogAdapter struct {
	inner glog.Logger
}

func (l *glogAdapter) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *glogAdapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *glogAdapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *glogAdapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *glogAdapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *glogAdapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

func (l *glogAdapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return wrap(l.inner.WithContext(ctx))
}

func (l *glogAdapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}

	if with, ok := l.inner.(glog.FieldsLogger); ok {
		return wrap(with.WithFields(maps.Clone(fields)))
	}

	// Fall back to flattened key/value pairs, sorted so output is stable.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	if with, ok := l.inner.(interface{ With(...any) *glog.BaseLogger }); ok {
		return wrap(with.With(args...))
	}
	return l
}
