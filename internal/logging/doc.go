// Package logging provides the process-wide log sink used by tagkv-server.
//
// It is a thin wrapper over the standard library's *log.Logger rather than a
// dedicated structured-logging dependency: none of the codebases this
// project draws on pull in logrus/zap/zerolog, so tagkv keeps the same
// log.Printf-based style torua uses throughout internal/coordinator, adding
// only the three severities the wire protocol's surrounding operator surface
// expects (INFO, ERROR, DEBUG).
package logging
