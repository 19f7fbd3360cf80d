package logger

import "go.uber.org/zap"

// ZapLogger zap SugaredLogger 實作
type ZapLogger struct {
	log *zap.SugaredLogger
}

func build(config zap.Config) (*ZapLogger, error) {
	l, err := config.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{log: l.Sugar()}, nil
}

// NewZapLogger 包裝現有的 *zap.Logger（測試可傳入 zaptest/observer 的 logger）
func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{log: l.WithOptions(zap.AddCallerSkip(2)).Sugar()}
}

func (l *ZapLogger) Info(msg string, keysAndValues ...any) {
	l.log.Infow(msg, keysAndValues...)
}

func (l *ZapLogger) Warn(msg string, keysAndValues ...any) {
	l.log.Warnw(msg, keysAndValues...)
}

func (l *ZapLogger) Error(msg string, keysAndValues ...any) {
	l.log.Errorw(msg, keysAndValues...)
}

func (l *ZapLogger) Debug(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

// With 帶固定欄位的子 logger
func (l *ZapLogger) With(keysAndValues ...any) Logger {
	return &ZapLogger{log: l.log.With(keysAndValues...)}
}

func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}
