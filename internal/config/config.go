// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Log           LogConfig           `mapstructure:"log"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Tree          TreeConfig          `mapstructure:"tree"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level           string `mapstructure:"level"`
	Format          string `mapstructure:"format"`
	OutputPath      string `mapstructure:"output_path"`
	ErrorOutputPath string `mapstructure:"error_output_path"`
	Maxsize         int    `mapstructure:"maxsize"`
	Maxbackups      int    `mapstructure:"maxbackups"`
	Maxage          int    `mapstructure:"maxage"`
	Compress        bool   `mapstructure:"compress"`
	TimeFormat      string `mapstructure:"time_format"`
}

type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// CacheConfig 存储树形视图等读缓存的配置。
// KeyPrefix 是所有 Redis 缓存 key 的应用级前缀，TTLSeconds 是缓存条目的兜底过期时间。
type CacheConfig struct {
	KeyPrefix  string `mapstructure:"key_prefix"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// TreeConfig 存储树形结构的业务约束。
// MaxDepth 仅在创建/移动节点时做校验，不限制后续的级联遍历。
type TreeConfig struct {
	MaxDepth int `mapstructure:"max_depth"`
}

// ElasticsearchConfig 存储操作日志检索用的 ES 配置。
// Addresses 为空表示不启用 ES，操作日志只落库。
type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	LogIndex  string   `mapstructure:"log_index"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 配置文件并解析导入到 Conf 变量中
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("fatal error unmarshalling config: %w", err))
	}

	applyDefaults()
}

// applyDefaults 补齐缺省配置，避免业务层到处判零值。
func applyDefaults() {
	if Conf.Cache.KeyPrefix == "" {
		Conf.Cache.KeyPrefix = "orgadmin"
	}
	if Conf.Cache.TTLSeconds <= 0 {
		Conf.Cache.TTLSeconds = 600
	}
	if Conf.Tree.MaxDepth <= 0 {
		Conf.Tree.MaxDepth = 10
	}
	if Conf.Elasticsearch.LogIndex == "" {
		Conf.Elasticsearch.LogIndex = "orgadmin_opera_logs"
	}
}
