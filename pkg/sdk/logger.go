package sdk

import (
	"log"
	"net/url"
	"os"
	"strings"
)

// Logger receives SDK messages that passed the configured threshold.
type Logger interface {
	Log(level LogLevel, message string)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(level LogLevel, message string)

func (f LoggerFunc) Log(level LogLevel, message string) { f(level, message) }

type stdLogger struct {
	l *log.Logger
}

// NewStdLogger writes through l, or through a stderr logger when l is nil.
func NewStdLogger(l *log.Logger) Logger {
	if l == nil {
		l = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &stdLogger{l: l}
}

func (s *stdLogger) Log(level LogLevel, message string) {
	s.l.Printf("[DynamicLinkSDK] %s: %s", strings.ToUpper(level.String()), message)
}

// Opener is the host's "open URL" capability, used to redirect to the fallback URL.
type Opener interface {
	Open(u *url.URL)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(u *url.URL)

func (f OpenerFunc) Open(u *url.URL) { f(u) }

type nopOpener struct{}

func (nopOpener) Open(*url.URL) {}
