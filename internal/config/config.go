package config

import (
	"github.com/KhmerCoders/khmercoders-web/library/pg"
	"github.com/KhmerCoders/khmercoders-web/library/yamlenv"
)

type Config struct {
	Postgres pg.PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig       `yaml:"kafka"`
	UserAPI  ApiConfig         `yaml:"userAPI"`
}

type KafkaConfig struct {
	Bootstrap        *yamlenv.Env[string] `yaml:"bootstrap"`
	ProducerClientID *yamlenv.Env[string] `yaml:"producer_client_id"`
	Topics           struct {
		Profiles    *yamlenv.Env[string] `yaml:"profiles"`
		Experiences *yamlenv.Env[string] `yaml:"experiences"`
	} `yaml:"topics"`
}

type ApiConfig struct {
	Port *yamlenv.Env[int] `yaml:"port"`
}
