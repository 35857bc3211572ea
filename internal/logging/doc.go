// Package logging provides structured logging using uber/zap.
//
// Production mode writes JSON, development mode writes coloured console
// output. Both go to stderr by default so that command output on stdout
// stays machine readable.
//
// Example Usage:
//
//	logger, err := logging.New(logging.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	logger.Named("loader").Debug("cache miss", logging.Module(id))
package logging
