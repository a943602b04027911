package broadcast

import (
	"time"

	"github.com/lixenwraith/beat-runner/parameter"
)

// Config holds spectator server settings
type Config struct {
	Addr             string        `toml:"addr"` // Empty disables the server
	SnapshotInterval time.Duration `toml:"snapshot_interval"`
	SendBuffer       int           `toml:"send_buffer"`
	WriteTimeout     time.Duration `toml:"write_timeout"`
}

// DefaultConfig returns a disabled server with stock tuning
func DefaultConfig() Config {
	return Config{
		SnapshotInterval: parameter.SpectatorSnapshotInterval,
		SendBuffer:       parameter.SpectatorSendBuffer,
		WriteTimeout:     parameter.SpectatorWriteTimeout,
	}
}
