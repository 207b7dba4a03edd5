package config

import (
	"context"
	"fmt"
	"log"
	"time"

	com "github.com/citizenwallet/custody/internal/common"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	ChainName           string        `env:"CHAIN_NAME,default=custody"`
	RPCURL              string        `env:"RPC_URL,default=http://localhost:8545"`
	NFTContractAddress  string        `env:"NFT_CONTRACT_ADDRESS,required"`
	AdminPrivateKey     string        `env:"ADMIN_PRIVATE_KEY"`
	ConfirmationTimeout time.Duration `env:"CONFIRMATION_TIMEOUT,default=90s"`
	OwnerReadRetries    int           `env:"OWNER_READ_RETRIES,default=3"`
	APIKey              string        `env:"API_KEY"`
	SentryURL           string        `env:"SENTRY_URL"`
	DiscordURL          string        `env:"DISCORD_URL"`
	DatadogAddr         string        `env:"DATADOG_ADDR"`
	AMQPURL             string        `env:"AMQP_URL"`
	RedisURL            string        `env:"REDIS_URL"`
	InflightTTL         time.Duration `env:"INFLIGHT_TTL,default=5m"`
	IdempotencyTTL      time.Duration `env:"IDEMPOTENCY_TTL,default=24h"`

	DB DBConfig
}

// New loads an optional .env file at envpath and reads the config from the environment.
func New(ctx context.Context, envpath string) (*Config, error) {
	if envpath != "" {
		log.Default().Println("loading env from file: ", envpath)
		err := godotenv.Load(envpath)
		if err != nil {
			return nil, err
		}
	}

	return process(ctx, envconfig.OsLookuper())
}

func process(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	err := envconfig.ProcessWith(ctx, cfg, l)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks what must be right for the process to start. The admin key is
// deliberately not checked here: a bad key is reported on every transfer instead.
func (c *Config) Validate() error {
	if !com.IsValidAddress(c.NFTContractAddress) {
		return fmt.Errorf("NFT_CONTRACT_ADDRESS must be 0x followed by 40 hex characters")
	}

	if c.ConfirmationTimeout <= 0 {
		return fmt.Errorf("CONFIRMATION_TIMEOUT must be positive, got %s", c.ConfirmationTimeout)
	}

	if c.OwnerReadRetries < 0 {
		return fmt.Errorf("OWNER_READ_RETRIES must not be negative, got %d", c.OwnerReadRetries)
	}

	if c.InflightTTL < c.ConfirmationTimeout {
		return fmt.Errorf("INFLIGHT_TTL (%s) must be at least CONFIRMATION_TIMEOUT (%s)", c.InflightTTL, c.ConfirmationTimeout)
	}

	return nil
}
