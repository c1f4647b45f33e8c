package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"
	"time"

	"rewear/config"
	"rewear/internal/command"
	"rewear/internal/log"
	"rewear/utils/path"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	_ "rewear/cmd/docs"
)

var (
	rootPath = path.RootPath()
	envPath  string
	yamlPath string
	conf     *config.Configuration
	logger   *zap.Logger
)

func init() {
	pflag.StringVarP(&envPath, "env", "e", "", "Environment file, e.g. --env .env")
	pflag.StringVarP(&yamlPath, "config", "c", "", "YAML config file, e.g. --config config.yaml")

	cobra.OnInitialize(func() {
		if envPath != "" && yamlPath != "" {
			fmt.Println("同時指定 --env 與 --config，將以 --env 優先")
		}
		initConfig()
		initLogger()
	})
}

// @title        ReWear API
// @version      1.0
// @description  社群衣物交換平台後端 API
// @host         localhost:5001
// @basePath     /api

// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
// @description 請在欄位輸入 "Bearer {Firebase ID token}"
func main() {
	rootCmd := &cobra.Command{
		Use:   "app",
		Short: "ReWear API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer logger.Sync()
			app, cleanup, err := wireApp(conf, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			logger.Info("start app ...")
			if err := app.Run(); err != nil {
				return err
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-quit:
				logger.Info("shutdown app ...", zap.String("signal", sig.String()))
			case err := <-app.Errors():
				if err != nil {
					logger.Error("http server stopped unexpectedly", zap.Error(err))
				}
			}

			timeout := time.Duration(conf.App.ShutdownTimeoutSeconds) * time.Second
			if timeout <= 0 {
				timeout = 5 * time.Second
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return app.Stop(ctx)
		},
	}
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)

	command.Register(rootCmd, func() (*command.Command, func(), error) {
		return wireCommand(conf, logger)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	v := viper.NewWithOptions(viper.KeyDelimiter("__"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()
	config.SetDefaults(v)

	useFile := false

	if envPath != "" {
		useFile = true
		if !filepath.IsAbs(envPath) {
			envPath = filepath.Join(rootPath, envPath)
		}
		fmt.Println("load .env config:", envPath)
		v.SetConfigFile(envPath)
		v.SetConfigType("env")
	} else if yamlPath != "" {
		useFile = true
		if !filepath.IsAbs(yamlPath) {
			yamlPath = filepath.Join(rootPath, "conf", yamlPath)
		}
		fmt.Println("load yaml config:", yamlPath)
		v.SetConfigFile(yamlPath)
		v.SetConfigType("yaml")
	} else {
		fmt.Println("No configuration file specified, using environment variables only.")
	}

	if useFile {
		if err := v.ReadInConfig(); err != nil {
			panic(fmt.Errorf("read config failed: %w", err))
		}
		v.WatchConfig()
		v.OnConfigChange(func(in fsnotify.Event) {
			fmt.Println("config file changed:", in.Name)
			if err := v.Unmarshal(&conf); err != nil {
				fmt.Println("unmarshal on change failed:", err)
			}
		})
	}

	bindEnvs(v, reflect.TypeOf(config.Configuration{}))

	if err := v.Unmarshal(&conf); err != nil {
		panic(fmt.Errorf("unmarshal config failed: %w", err))
	}
}

func initLogger() {
	var err error
	logger, err = log.NewLogger(conf)
	if err != nil {
		panic(fmt.Errorf("init logger failed: %w", err))
	}
}

// bindEnvs 讓 AutomaticEnv 也能套用到巢狀 struct（APP__PORT、MEDIA__BUCKET__URL）
func bindEnvs(v *viper.Viper, t reflect.Type, path ...string) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			tag = field.Name
		}
		newPath := append(append([]string{}, path...), tag)
		if field.Type.Kind() == reflect.Struct || (field.Type.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct) {
			bindEnvs(v, field.Type, newPath...)
		} else {
			_ = v.BindEnv(strings.Join(newPath, "__"))
		}
	}
}
