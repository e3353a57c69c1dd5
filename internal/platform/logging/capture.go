package logging

import (
	"sync"

	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultCaptureMaxBytes = 4 << 20

// Capture keeps a plain-text copy of log entries until it is drained.
type Capture struct {
	mu        sync.Mutex
	buf       *bytebufferpool.ByteBuffer
	maxBytes  int
	truncated bool
	level     zapcore.LevelEnabler
	encoder   zapcore.Encoder
}

func NewCapture(level Level, maxBytes int) *Capture {
	if maxBytes <= 0 {
		maxBytes = defaultCaptureMaxBytes
	}
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
	}
	return &Capture{
		buf:      bytebufferpool.Get(),
		maxBytes: maxBytes,
		level:    level,
		encoder:  zapcore.NewConsoleEncoder(encoderCfg),
	}
}

// Reset drops everything captured so far.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Reset()
	c.truncated = false
}

// Drain returns the captured text and resets the buffer.
func (c *Capture) Drain() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.buf.String()
	c.buf.Reset()
	c.truncated = false
	return out
}

func (c *Capture) append(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.truncated {
		return
	}
	if c.buf.Len()+len(p) > c.maxBytes {
		c.truncated = true
		_, _ = c.buf.WriteString("... log capture truncated\n")
		return
	}
	_, _ = c.buf.Write(p)
}

// Tee returns a logger that also writes into c.
func (l *Logger) Tee(c *Capture) *Logger {
	if c == nil {
		return l
	}
	base := l
	if base == nil {
		base = Default()
	}
	return FromZap(base.Zap().WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, &captureCore{capture: c, encoder: c.encoder.Clone()})
	})))
}

type captureCore struct {
	capture *Capture
	encoder zapcore.Encoder
}

func (cc *captureCore) Enabled(level zapcore.Level) bool {
	return cc.capture.level.Enabled(level)
}

func (cc *captureCore) With(fields []zapcore.Field) zapcore.Core {
	enc := cc.encoder.Clone()
	for i := range fields {
		fields[i].AddTo(enc)
	}
	return &captureCore{capture: cc.capture, encoder: enc}
}

func (cc *captureCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if cc.Enabled(entry.Level) {
		return ce.AddCore(entry, cc)
	}
	return ce
}

func (cc *captureCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	out, err := cc.encoder.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	cc.capture.append(out.Bytes())
	out.Free()
	return nil
}

func (cc *captureCore) Sync() error {
	return nil
}
