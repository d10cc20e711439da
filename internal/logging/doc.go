// Package logging provides structured logging for contentd built on Zap.
//
// The Logger carries correlation data (run ID, pipeline phase and step)
// through context.Context so every collaborator invoked by the phase
// runner logs with the same identifying fields without threading them
// explicitly.
package logging
