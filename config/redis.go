package config

// Host 為空時不連線，限流自動停用
type Redis struct {
	Host     string `mapstructure:"HOST" json:"host" yaml:"host"`
	Port     int    `mapstructure:"PORT" json:"port" yaml:"port"`
	Password string `mapstructure:"PASSWORD" json:"password" yaml:"password"`
	DB       int    `mapstructure:"DB" json:"db" yaml:"db"`
}

type RateLimit struct {
	Enabled       bool  `mapstructure:"ENABLED" json:"enabled" yaml:"enabled"`
	Limit         int   `mapstructure:"LIMIT" json:"limit" yaml:"limit"`
	WindowSeconds int64 `mapstructure:"WINDOW_SECONDS" json:"windowSeconds" yaml:"windowSeconds"`
}
