package logger

import (
	"context"
	"runtime/debug"
)

// BuildInfo logs information stored inside the Go binary.
func (log *Logger) BuildInfo(ctx context.Context) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	values := []any{"go", info.GoVersion, "path", info.Path}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.time", "vcs.modified", "GOOS", "GOARCH":
			values = append(values, s.Key, s.Value)
		}
	}

	log.Info(ctx, "build info", values...)
}
