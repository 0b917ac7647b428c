package logging

import "go.uber.org/zap"

// Logger is the leveled, structured logger handed to transports and commands.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	// Fatal logs args at error level, regardless of the logger's level, and exits the process.
	Fatal(args ...interface{})

	SetLevel(level Level)
	GetLevel() Level
	// Sublogger returns a logger named "<name>.<subname>" with its own level.
	Sublogger(subname string) Logger
	// ForDevice returns a logger sharing this one's level that tags every entry with the device
	// name and SPI port. Calling it again replaces the tag.
	ForDevice(name, port string) Logger
	AddAppender(appender Appender)
	AsZap() *zap.SugaredLogger
	Sync() error
}
