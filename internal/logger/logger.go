// Package logger constructs the service-wide zap logger.
package logger

import "go.uber.org/zap"

// NewNamed creates a logger for the given environment and names it after the
// service. Development gets the human-readable console encoder; everything
// else gets production JSON output.
func NewNamed(appEnv, service string) (*zap.Logger, error) {
	var (
		log *zap.Logger
		err error
	)
	if appEnv == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return log.Named(service), nil
}
