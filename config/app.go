package config

type App struct {
	// 當前開發環境
	Env string `mapstructure:"ENV" json:"env" yaml:"env"`
	// 服務端口
	Port uint32 `mapstructure:"PORT" json:"port" yaml:"port"`
	// 服務名稱
	Name string `mapstructure:"NAME" json:"name" yaml:"name"`
	// 服務版本
	Version string `mapstructure:"VERSION" json:"version" yaml:"version"`
	// API 路由前綴，例如 /api
	BasePath       string `mapstructure:"BASE_PATH" json:"basePath" yaml:"basePath"`
	SwaggerEnabled bool   `mapstructure:"SWAGGER_ENABLED" json:"swagger_enabled" yaml:"swagger_enabled"`
	PprofEnabled   bool   `mapstructure:"PPROF_ENABLED" json:"pprof_enabled" yaml:"pprof_enabled"`
	// 單次請求 body 上限（MB），含 multipart 圖片
	MaxUploadMB int64 `mapstructure:"MAX_UPLOAD_MB" json:"maxUploadMB" yaml:"maxUploadMB"`
	// 關機等待秒數
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" json:"shutdownTimeoutSeconds" yaml:"shutdownTimeoutSeconds"`
}
