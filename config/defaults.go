package config

import "github.com/spf13/viper"

// SetDefaults 註冊所有預設值，key 使用 "__" 分隔（與 viper.KeyDelimiter 一致）
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP__ENV", "development")
	v.SetDefault("APP__PORT", 5001)
	v.SetDefault("APP__NAME", "rewear")
	v.SetDefault("APP__VERSION", "1.0.0")
	v.SetDefault("APP__BASE_PATH", "/api")
	v.SetDefault("APP__MAX_UPLOAD_MB", 10)
	v.SetDefault("APP__SHUTDOWN_TIMEOUT_SECONDS", 5)

	v.SetDefault("LOG__LEVEL", "info")

	v.SetDefault("MONGODB__URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB__DATABASE", "rewear")

	v.SetDefault("REDIS__PORT", 6379)
	v.SetDefault("RATE_LIMIT__ENABLED", true)
	v.SetDefault("RATE_LIMIT__LIMIT", 120)
	v.SetDefault("RATE_LIMIT__WINDOW_SECONDS", 60)

	v.SetDefault("FLUENTD__PORT", 24224)
	v.SetDefault("FLUENTD__TAG_PREFIX", "rewear")

	v.SetDefault("MEDIA__DRIVER", MediaDriverCloudinary)
	v.SetDefault("MEDIA__FOLDER", "rewear")
	v.SetDefault("MEDIA__MAX_DIMENSION", 800)
	v.SetDefault("MEDIA__MAX_PIXELS", 40_000_000)
	v.SetDefault("MEDIA__MAX_FILES", 5)
	v.SetDefault("MEDIA__BUCKET__URL", "file:///tmp/rewear-media?create_dir=true")

	v.SetDefault("CORS__ALLOW_ORIGINS", []string{"http://localhost:5173"})
}
