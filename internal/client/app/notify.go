package app

import "go.uber.org/zap"

// Notifier shows transient success and failure messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string, err error)
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier creates a notifier backed by log.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Success(msg string) {
	n.log.Info(msg)
}

func (n *LogNotifier) Error(msg string, err error) {
	n.log.Error(msg, zap.Error(err))
}
