package http

import (
	"fmt"

	"github.com/fivetwenty-io/schematics-client/pkg/schematics"
)

// leveledLogger adapts a schematics.Logger to retryablehttp's leveled
// logger. Per-attempt debug chatter is dropped; the client logs its own
// request, response and retry events.
type leveledLogger struct {
	logger schematics.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fields(keysAndValues))
}

func (l *leveledLogger) Info(string, ...interface{}) {}

func (l *leveledLogger) Debug(string, ...interface{}) {}

func fields(keysAndValues []interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		value := keysAndValues[i+1]
		if err, isErr := value.(error); isErr {
			value = err.Error()
		}

		result[key] = value
	}

	return result
}
