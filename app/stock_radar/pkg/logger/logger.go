package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log 全局日志实例
var Log *logrus.Logger

// CustomFormatter 输出 [TIME] [LEVL] [file:line] msg 格式
type CustomFormatter struct{}

// Format 实现 logrus.Formatter 接口
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("[" + entry.Time.Format("2006-01-02 15:04:05") + "] ")

	// 级别统一裁剪到 4 个字符对齐，例如 INFO, WARN, ERRO
	level := strings.ToUpper(entry.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}
	sb.WriteString("[" + level + "] ")

	if entry.HasCaller() {
		fmt.Fprintf(&sb, "[%s:%d] ", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}

	sb.WriteString(entry.Message)
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

// InitLogger 初始化全局日志：filePath 非空时同时写入文件与控制台，
// 非法或为空的级别回退到 info
func InitLogger(levelStr string, filePath string) error {
	Log = logrus.New()
	Log.SetReportCaller(true)
	Log.SetFormatter(&CustomFormatter{})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	writers := []io.Writer{os.Stdout}
	if filePath != "" {
		file, err := openLogFile(filePath)
		if err != nil {
			return err
		}
		writers = append(writers, file)
	}
	Log.SetOutput(io.MultiWriter(writers...))

	return nil
}

// openLogFile 追加模式打开日志文件，目录不存在时先创建
func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
}
