package logging

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Keys of the fields ForDevice attaches to every entry.
const (
	DeviceKey = "device"
	PortKey   = "port"
)

type impl struct {
	name  string
	level AtomicLevel
	inUTC bool
	// device is prepended to the fields of every entry.
	device []zapcore.Field

	appenders []Appender
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Sublogger(subname string) Logger {
	sub := *imp
	sub.name = subname
	if imp.name != "" {
		sub.name = imp.name + "." + subname
	}
	sub.level = NewAtomicLevelAt(imp.level.Get())
	return &sub
}

func (imp *impl) ForDevice(name, port string) Logger {
	tagged := *imp
	tagged.device = []zapcore.Field{zap.String(DeviceKey, name)}
	if port != "" {
		tagged.device = append(tagged.device, zap.String(PortKey, port))
	}
	return &tagged
}

func (imp *impl) Sync() error {
	var errs []error
	for _, appender := range imp.appenders {
		if err := appender.Sync(); err != nil {
			errs = append(errs, err)
		}
	}
	return multierr.Combine(errs...)
}

// AsZap returns an equivalent zap logger for libraries that want one. Appenders that are also a
// zapcore.Core, such as the observer used by tests, keep receiving its entries.
func (imp *impl) AsZap() *zap.SugaredLogger {
	config := newZapConfig()
	config.Level = zap.NewAtomicLevelAt(imp.level.Get().AsZap())
	ret := zap.Must(config.Build()).Named(imp.name)
	for _, appender := range imp.appenders {
		if core, ok := appender.(zapcore.Core); ok {
			ret = ret.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
				return zapcore.NewTee(c, core)
			}))
		}
	}
	return ret.With(imp.device...).Sugar()
}

func (imp *impl) shouldLog(level Level) bool {
	return level >= imp.level.Get()
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.logw(DEBUG, msg, keysAndValues...)
	}
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.logw(INFO, msg, keysAndValues...)
	}
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.logw(WARN, msg, keysAndValues...)
	}
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.logw(ERROR, msg, keysAndValues...)
	}
}

func (imp *impl) Fatal(args ...interface{}) {
	imp.logw(ERROR, fmt.Sprint(args...))
	os.Exit(1)
}

// logw writes one entry to every appender. Keys are stringified; values are kept as zap.Any
// fields, so only exported struct fields end up in the output.
func (imp *impl) logw(level Level, msg string, keysAndValues ...interface{}) {
	entry := imp.newEntry(level, msg)

	fields := make([]zapcore.Field, 0, len(imp.device)+(len(keysAndValues)+1)/2)
	fields = append(fields, imp.device...)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			// Keep the key visible instead of dropping it.
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}

	for _, appender := range imp.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprint(os.Stderr, err)
		}
	}
}

func (imp *impl) newEntry(level Level, msg string) zapcore.Entry {
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: imp.name,
		Message:    msg,
		Caller:     getCaller(),
	}
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}
	return entry
}

// getCaller returns the location of the code that called a logging method, e.g.
// "buses/handle_transport.go:52". The stack is getCaller, newEntry, logw, the logging method,
// then its caller.
func getCaller() zapcore.EntryCaller {
	const skipToLogCaller = 4
	var entryCaller zapcore.EntryCaller
	var ok bool
	entryCaller.PC, entryCaller.File, entryCaller.Line, ok = runtime.Caller(skipToLogCaller)
	if !ok {
		return entryCaller
	}
	entryCaller.Defined = true
	if fn := runtime.FuncForPC(entryCaller.PC); fn != nil {
		entryCaller.Function = fn.Name()
	}
	return entryCaller
}
