package env

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Region    string `env:"BEACON_REGION"`
	DebugHTTP bool   `env:"BEACON_DEBUG_HTTP"`

	Host      string `env:"BEACON_HOST,default=0.0.0.0"`
	Port      int    `env:"BEACON_PORT,default=25565"`
	Reuseport bool   `env:"BEACON_REUSEPORT"`

	MaxPacketSize   int    `env:"BEACON_MAX_PACKET_SIZE,default=2097152"`
	StackBufferSize int    `env:"BEACON_STACK_BUFFER_SIZE,default=8192"`
	TickIntervalMs  uint64 `env:"BEACON_TICK_INTERVAL_MS,default=50"`
}

func LoadConfig(ctx context.Context) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			panic(err)
		}
	}

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
