package config

import (
	"os"

	"github.com/go-yaml/yaml"

	"github.com/opencivic/civicpulse"
)

type Config struct {
	Site     Site                  `yaml:"site"`
	Server   Server                `yaml:"server"`
	Severity civicpulse.Thresholds `yaml:"severity"`
}

type Site struct {
	FQDN        string `yaml:"fqdn"`
	TokenSecret string `yaml:"tokenSecret"`
	TokenTTL    int    `yaml:"tokenTTL"` // seconds
}

type Server struct {
	ListenAddr            string `yaml:"listenAddr"`
	PostgresDsn           string `yaml:"postgresDsn"`
	RedisAddr             string `yaml:"redisAddr"`
	RedisDB               int    `yaml:"redisDB"`
	MemcachedAddr         string `yaml:"memcachedAddr"`
	EnableTrace           bool   `yaml:"enableTrace"`
	TraceEndpoint         string `yaml:"traceEndpoint"`
	TranscriptionEndpoint string `yaml:"transcriptionEndpoint"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}
	if config.Severity == (civicpulse.Thresholds{}) {
		config.Severity = civicpulse.DefaultThresholds
	}
	if config.Site.TokenTTL == 0 {
		config.Site.TokenTTL = 3600
	}

	return config, nil
}
