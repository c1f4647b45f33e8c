package config

type MongoDB struct {
	URI      string `mapstructure:"URI" json:"uri" yaml:"uri"`
	Options  string `mapstructure:"OPTIONS" json:"options" yaml:"options"`
	Database string `mapstructure:"DATABASE" json:"database" yaml:"database"`
	// 單機版 MongoDB 不支援 transaction 時設為 true，改走補償流程
	DisableTransactions bool `mapstructure:"DISABLE_TRANSACTIONS" json:"disableTransactions" yaml:"disableTransactions"`
}
