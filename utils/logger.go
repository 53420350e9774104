package utils

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger: console output for "development",
// JSON otherwise.
func NewLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
