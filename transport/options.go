package transport

import "go.uber.org/zap"

// Options configures a Listener. It plays the role the teacher's
// transport.Options played for the old goroutine-per-connection TCP
// server, trimmed of the text-protocol Store dependency and extended
// with the packet-framing limits the reactor-driven Connection needs.
type Options struct {
	// Host to listen on.
	Host string

	// Port to listen on.
	Port int

	// Reuseport controls setting SO_REUSEPORT so multiple listener
	// instances can share the port across reactor shards.
	Reuseport bool

	// MaxPacketSize bounds the Data state's declared packetSize; a
	// connection whose length prefix exceeds it is torn down.
	MaxPacketSize int

	// StackBufferSize is the largest packet body read directly into a
	// reusable buffer instead of a fresh heap allocation.
	StackBufferSize int

	Log *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxPacketSize <= 0 {
		o.MaxPacketSize = 1 << 21
	}
	if o.StackBufferSize <= 0 {
		o.StackBufferSize = 8192
	}
	return o
}
