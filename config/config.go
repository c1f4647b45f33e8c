package config

type Configuration struct {
	App       App             `mapstructure:"APP" json:"app" yaml:"app"`
	Redis     Redis           `mapstructure:"REDIS" json:"redis" yaml:"redis"`
	RateLimit RateLimit       `mapstructure:"RATE_LIMIT" json:"rateLimit" yaml:"rateLimit"`
	Log       Log             `mapstructure:"LOG" json:"log" yaml:"log"`
	MongoDB   MongoDB         `mapstructure:"MONGODB" json:"mongodb" yaml:"mongodb"`
	Telemetry TelemetryConfig `mapstructure:"TELEMETRY" yaml:"telemetry"`
	Fluentd   Fluentd         `mapstructure:"FLUENTD" yaml:"fluentd"`
	Firebase  Firebase        `mapstructure:"FIREBASE" json:"firebase" yaml:"firebase"`
	Media     Media           `mapstructure:"MEDIA" json:"media" yaml:"media"`
	Cors      Cors            `mapstructure:"CORS" json:"cors" yaml:"cors"`
}
