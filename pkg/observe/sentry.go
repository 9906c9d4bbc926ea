package observe

import (
	"encoding/json"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap/zapcore"
)

const (
	_sentryMaxErrorDepth        int           = 9
	_sentryServerRequestTimeout time.Duration = 5 * time.Second
)

// SentryHook is an io.Writer that forwards error-level zap output to Sentry.
// Plug it into NewZapLogger as an additional writer when a DSN is configured.
type SentryHook struct {
	appEnv  string
	appName string
}

func NewSentryHook(appEnv, appName, dsn string, isDebug bool) *SentryHook {
	if dsn == "" {
		log.Println("sentry init skipped: no DSN")
		return nil
	}
	sentryTransport := sentry.NewHTTPTransport()
	sentryTransport.Timeout = _sentryServerRequestTimeout
	if err := sentry.Init(
		sentry.ClientOptions{
			AttachStacktrace: true,
			Debug:            isDebug,
			Dsn:              dsn,
			Environment:      appEnv,
			MaxErrorDepth:    _sentryMaxErrorDepth,
			ServerName:       appName,
			Transport:        sentryTransport,
		}); err != nil {

		log.Println("sentry init error: ", err.Error())
		return nil
	}
	return &SentryHook{
		appEnv:  appEnv,
		appName: appName,
	}
}

func (h *SentryHook) Write(p []byte) (n int, err error) {
	type entry struct {
		Level      string `json:"level"`
		AppName    string `json:"app_name"`
		CallerFile string `json:"caller_file"`
		CallerLine int    `json:"caller_line"`
		CallerFunc string `json:"caller_func"`
		Stack      string `json:"stack"`
		Message    string `json:"msg"`
		Error      string `json:"error"`
		Timestamp  string `json:"timestamp"`
	}

	var e entry
	if err := json.Unmarshal(p, &e); err != nil {
		return len(p), nil
	}

	level, err := zapcore.ParseLevel(e.Level)
	if err != nil || len(e.Message) == 0 {
		return len(p), nil
	}

	switch level {
	case zapcore.ErrorLevel, zapcore.FatalLevel, zapcore.PanicLevel:
		timestamp, _ := time.ParseInLocation("2006-01-02T15-04-05.000", e.Timestamp, time.UTC)

		event := sentry.NewEvent()
		event.Environment = h.appEnv
		event.Level = mapLevel(level)
		event.Timestamp = timestamp
		event.Message = e.Message
		event.Extra["AppName"] = h.appName
		event.Extra["Error"] = e.Error
		event.Extra["CallerFile"] = e.CallerFile
		event.Extra["CallerLine"] = e.CallerLine
		event.Extra["CallerFunc"] = e.CallerFunc
		event.Extra["Stack"] = e.Stack
		event.Exception = append(event.Exception, sentry.Exception{
			Type:       e.Message,
			Value:      e.Error,
			Stacktrace: sentry.NewStacktrace(),
		})
		sentry.CaptureEvent(event)
	}

	return len(p), nil
}

func mapLevel(zl zapcore.Level) sentry.Level {
	switch zl {
	case zapcore.DebugLevel, zapcore.InvalidLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.FatalLevel, zapcore.PanicLevel:
		return sentry.LevelFatal
	}

	return sentry.LevelDebug
}
