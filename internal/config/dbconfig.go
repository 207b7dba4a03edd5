package config

// DBConfig selects where confirmed transfers are journaled. With no DB_HOST the
// journal is a sqlite file under DB_PATH.
type DBConfig struct {
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBHost     string `env:"DB_HOST"`
	DBSSLMode  string `env:"DB_SSLMODE,default=disable"`
	DBPath     string `env:"DB_PATH,default=."`
	Disabled   bool   `env:"DB_DISABLED,default=false"`
}

func (c DBConfig) IsPostgres() bool {
	return c.DBHost != ""
}
