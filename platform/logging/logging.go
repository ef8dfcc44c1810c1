// Package logging wires logrus for the whole backend. Level and format come
// from config; everything else logs through the package-level logger.
package logging

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Init configures the global logrus logger. Call once from main before
// anything else logs.
func Init() {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
