package logger

import (
	"go.uber.org/zap"
)

// Init builds the process-wide logger and installs it via zap.ReplaceGlobals.
// Development gets the human console encoder, everything else JSON.
func Init(env string) error {
	var (
		log *zap.Logger
		err error
	)
	if env == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(log)
	return nil
}
