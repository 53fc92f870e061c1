// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/cgmprep/internal/contract"
	"github.com/huangsam/cgmprep/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

var _ contract.ResultWriter = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteClean prints a cleaning run using the configured output format.
func (ow *OutWriter) WriteClean(result *schema.PipelineResult, cfg *contract.Config, duration time.Duration) error {
	return WriteCleanResult(result, cfg, duration)
}
