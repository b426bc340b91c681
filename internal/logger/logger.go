package logger

import (
	"io"
	"os"
	"time"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
)

var output io.Writer = os.Stdout

// Setup initializes Logrus with a rotating file plus stdout.
func Setup(filename, level string) {
	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10, // megabytes
		MaxBackups: 7,
		MaxAge:     7, // days
		Compress:   true,
	}
	output = io.MultiWriter(os.Stdout, rotator)

	logrus.SetOutput(output)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// RequestLogger logs every HTTP request to the same sink as the app log.
func RequestLogger() gin.HandlerFunc {
	return ginlog.SetLogger(
		ginlog.WithWriter(output),
		ginlog.WithUTC(true),
		ginlog.WithSkipPath([]string{"/healthz"}),
	)
}
