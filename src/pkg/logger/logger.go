package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 結構化日誌介面（key-value 參數）
type Logger interface {
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	Debug(msg string, keysAndValues ...any)
	With(keysAndValues ...any) Logger
	Sync() error
}

var global Logger

func init() {
	config := zap.NewDevelopmentConfig()
	if os.Getenv("APP_ENV") == "production" {
		config = zap.NewProductionConfig()
	}
	l, err := build(config)
	if err != nil {
		panic(err)
	}
	global = l
}

// Init 依環境與等級重新建立全域 logger
// env 為 "production" 時輸出 JSON，其餘為開發格式
func Init(env, level string) error {
	config := zap.NewDevelopmentConfig()
	if env == "production" {
		config = zap.NewProductionConfig()
	}
	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return err
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := build(config)
	if err != nil {
		return err
	}
	global = l
	return nil
}

// Get 全域 logger（依賴注入時使用）
func Get() Logger {
	return global
}

// Set 替換全域 logger（測試用）
func Set(l Logger) {
	global = l
}

func Info(msg string, keysAndValues ...any)  { global.Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...any)  { global.Warn(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...any) { global.Error(msg, keysAndValues...) }
func Debug(msg string, keysAndValues ...any) { global.Debug(msg, keysAndValues...) }

// Sync 刷新緩衝（程式結束前呼叫）
func Sync() error { return global.Sync() }
