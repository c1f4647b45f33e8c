package path

import (
	"os"
	"path/filepath"
	"runtime"
)

// RootEnv 部署時可直接指定設定檔所在的根目錄
const RootEnv = "APP_ROOT"

// RootPath 專案根目錄：APP_ROOT > 原始碼位置（go run / 測試）> 目前工作目錄（已編譯的 binary）
func RootPath() string {
	if root := os.Getenv(RootEnv); root != "" {
		return filepath.Clean(root)
	}
	// /project/utils/path/path.go → /project
	if _, filename, _, ok := runtime.Caller(0); ok {
		root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
		if ok, _ := Exists(filepath.Join(root, "go.mod")); ok {
			return root
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Exists 路徑是否存在
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
