package config

type Cors struct {
	AllowOrigins []string `mapstructure:"ALLOW_ORIGINS" json:"allowOrigins" yaml:"allowOrigins"`
}
