package config

type Firebase struct {
	ProjectID string `mapstructure:"PROJECT_ID" json:"projectId" yaml:"projectId"`
	// service account JSON；留空則使用 Application Default Credentials
	CredentialsFile string `mapstructure:"CREDENTIALS_FILE" json:"credentialsFile" yaml:"credentialsFile"`
}
