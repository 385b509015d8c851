package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ComponentKey is the log field naming the subsystem that wrote an entry.
const ComponentKey = "cmp"

// Component returns the global logger tagged with a subsystem name such as
// "board" or "remote". The global logger is read at call time, so call it
// after main has installed the configured writer.
func Component(name string) zerolog.Logger {
	return log.Logger.With().Str(ComponentKey, name).Logger()
}
