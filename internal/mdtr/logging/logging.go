// Package logging carries the logger plumbing shared by the report pipeline.
package logging

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// OrDiscard returns l, or a logger dropping every entry when l is nil.
func OrDiscard(l log.FieldLogger) log.FieldLogger {
	if l != nil {
		return l
	}
	discard := log.New()
	discard.SetOutput(io.Discard)
	return discard
}
