package command

import (
	"io"

	"github.com/emarketeer/em-commons/internal/meta"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger returns a debug-level console logger when verbose is set and a
// no-op logger otherwise.
func newLogger(verbose bool, out io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(out),
		zapcore.DebugLevel,
	)
	return zap.New(core).Named(meta.Slug)
}
