// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses the Viper-backed ConfigurationLoader, the zap LoggerFactory,
// the FlushingWriter used for line-flushed transcripts, the Clock
// abstraction, the home directory expander for user supplied paths, and the
// context accessor that carries the catalog path between cobra commands.
package utils
