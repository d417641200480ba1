// Package utils carries the shared service-layer plumbing: logging
// setup, error wrapping, graceful shutdown, and ID generation. The
// library packages (segment, view, numconv, layout, epoch) stay
// log-free; only services and binaries pull this in.
package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// InitLogging configures the standard logrus logger once: stdout, the
// requested level (defaulting to info on an unknown name), and either
// the text or the JSON formatter.
func InitLogging(level string, json bool) {
	logrus.SetOutput(os.Stdout)
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	if json {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// ComponentLogger hands a package a tagged entry on the standard
// logger.
func ComponentLogger(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
