package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/loganlanou/storefront/service"
)

const serviceName = "storefront"

// setupLogger installs the process-wide logger described by config.
func setupLogger(config *service.Config) {
	w := os.Stderr
	if config.Log.Format == "text" {
		w = os.Stdout
	}
	slog.SetDefault(newLogger(w, config))
	slog.Debug("logger configured", "level", config.Log.Level.String(), "format", config.Log.Format)
}

// newLogger tags every record with the service and environment so lines
// from several deployments can share one sink.
func newLogger(w io.Writer, config *service.Config) *slog.Logger {
	var handler slog.Handler
	if config.Log.Format == "text" {
		root := sourceRoot()
		replacer := func(_ []string, a slog.Attr) slog.Attr {
			if src, ok := a.Value.Any().(*slog.Source); ok {
				src.File = trimSource(src.File, root)
				return a
			}
			if err, ok := a.Value.Any().(error); ok {
				colored := tint.Err(err)
				colored.Key = a.Key
				return colored
			}
			return a
		}
		handler = tint.NewHandler(w, &tint.Options{
			Level:       config.Log.Level,
			TimeFormat:  time.TimeOnly,
			AddSource:   true,
			ReplaceAttr: replacer,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: config.Log.Level})
	}

	return slog.New(handler).With(
		slog.String("service", serviceName),
		slog.String("environment", config.Environment),
	)
}

// sourceRoot is the directory name the module's files live under, taken from
// the build info and falling back to the working directory.
func sourceRoot() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Path != "" {
		return "/" + filepath.Base(info.Main.Path) + "/"
	}
	if wd, err := os.Getwd(); err == nil {
		return "/" + filepath.Base(wd) + "/"
	}
	return "/" + serviceName + "/"
}

// trimSource shortens an absolute source path to its module-relative form,
// or to its last two elements when the root is not in the path.
func trimSource(file, root string) string {
	if i := strings.LastIndex(file, root); i >= 0 {
		return file[i+len(root):]
	}
	dir, name := filepath.Split(file)
	return filepath.Join(filepath.Base(dir), name)
}
