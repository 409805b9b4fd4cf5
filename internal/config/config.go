package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server       `mapstructure:"server"`
	Logger   Logger       `mapstructure:"logger"`
	Database Database     `mapstructure:"database"`
	Traders  []TraderSeed `mapstructure:"traders"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Database holds the configuration for the ledger database.
// The default DSN is an in-memory SQLite database, so ledger state lives and
// dies with the process.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// TraderSeed is one entry of the initial trader roster.
type TraderSeed struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; the defaults describe a complete
// working setup.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("database.dsn", "file::memory:?cache=shared")
	viper.SetDefault("traders", defaultTraderSeeds())

	if err = viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}

// defaultTraderSeeds is the fixed seed roster used when the config file does
// not define one.
func defaultTraderSeeds() []map[string]string {
	seeds := make([]map[string]string, 0, 5)
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		seeds = append(seeds, map[string]string{"id": id, "name": "交易员" + id})
	}
	return seeds
}
