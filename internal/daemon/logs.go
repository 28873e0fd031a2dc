package daemon

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// setupLogging points the default slog logger at w through a tint handler.
func (d *Daemon) setupLogging(w io.Writer) {
	handler := tint.NewHandler(w, &tint.Options{
		Level:      d.cfg.Log.Level,
		TimeFormat: time.DateTime,
		NoColor:    !useColor(d.cfg.Log.Color, w),
	})

	d.logger = slog.New(handler)
	slog.SetDefault(d.logger)
}

// useColor resolves the "auto", "always" and "never" color modes.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
