package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type ReferralConfig struct {
	Env        string `yaml:"env"`
	HTTPServer `yaml:"http_server"`
	ReferralDB `yaml:"referral_db"`
	LogConfig  `yaml:"log_config"`
	Kafka      `yaml:"kafka"`
	Placement  `yaml:"placement"`
	Settlement `yaml:"settlement"`
	Dispatcher `yaml:"dispatcher"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type ReferralDB struct {
	Dsn            string `yaml:"dsn"`
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type Kafka struct {
	Host          string `yaml:"host"`
	Port          string `yaml:"port"`
	PurchaseTopic string `yaml:"purchase_topic" env-default:"purchase-events"`
	SettleTopic   string `yaml:"settlement_topic" env-default:"settlement-events"`
	GroupID       string `yaml:"group_id" env-default:"referral-service"`
}

type Placement struct {
	BranchingFactor   int  `yaml:"branching_factor" env-default:"4"`
	MaxDepth          int  `yaml:"max_depth" env-default:"10"`
	AllowRootFallback bool `yaml:"allow_root_fallback"`
}

type Settlement struct {
	Currency      string `yaml:"currency" env-default:"USDT"`
	MaxLevelDepth int    `yaml:"max_level_depth" env-default:"10"`
}

type Dispatcher struct {
	Workers     int `yaml:"workers" env-default:"8"`
	MaxAttempts int `yaml:"max_attempts" env-default:"5"`
	ScanSeconds int `yaml:"scan_seconds" env-default:"60"`
}

func MustLoad() *ReferralConfig {
	configPath := os.Getenv("REFERRAL_CONFIG_PATH")
	if configPath == "" {
		log.Fatalf("REFERRAL_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	var cfg ReferralConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
