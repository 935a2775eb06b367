// Package session opens the per-run log file that records every step of a
// mirror run, including the output of external commands.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/temirov/ghmirror/internal/filesystem"
	"github.com/temirov/ghmirror/internal/utils"
)

const (
	logFileNameTemplateConstant          = "ghmirror_%s.log"
	logFileTimestampLayoutConstant       = "20060102_150405"
	logDirectoryPermissionsConstant      = 0o755
	maximumLogFileSizeMegabytesConstant  = 512
	defaultLogDirectoryConstant          = "."
	createDirectoryErrorTemplateConstant = "create log directory %s: %w"
	createLoggerErrorTemplateConstant    = "create session logger: %w"
	loggerFactoryMissingMessageConstant  = "session logger factory not configured"
	sessionStartedMessageConstant        = "Migration session started"
	sessionFinishedMessageConstant       = "Migration session finished"
	logFieldLogFileConstant              = "log_file"
	logFieldStartedAtConstant            = "started_at"
	logFieldDurationConstant             = "duration"
)

// ErrLoggerFactoryNotConfigured indicates Open was called without a logger factory.
var ErrLoggerFactoryNotConfigured = errors.New(loggerFactoryMissingMessageConstant)

// DirectoryCreator creates the log directory.
type DirectoryCreator interface {
	MkdirAll(path string, permissions fs.FileMode) error
}

// Options configure a session.
type Options struct {
	Directory        string
	Level            utils.LogLevel
	Format           utils.LogFormat
	LoggerFactory    *utils.LoggerFactory
	Clock            func() time.Time
	DirectoryCreator DirectoryCreator
}

// Session owns the run's log file and the logger writing to it.
type Session struct {
	Logger      *zap.Logger
	LogFilePath string
	StartedAt   time.Time
	clock       func() time.Time
	sink        *lumberjack.Logger
}

// Open creates the log directory if needed and starts a session logger writing to ghmirror_<timestamp>.log.
func Open(options Options) (*Session, error) {
	if options.LoggerFactory == nil {
		return nil, ErrLoggerFactoryNotConfigured
	}

	clock := options.Clock
	if clock == nil {
		clock = time.Now
	}

	directoryCreator := options.DirectoryCreator
	if directoryCreator == nil {
		directoryCreator = filesystem.OSFileSystem{}
	}

	directory := strings.TrimSpace(options.Directory)
	if len(directory) == 0 {
		directory = defaultLogDirectoryConstant
	}
	if mkdirError := directoryCreator.MkdirAll(directory, logDirectoryPermissionsConstant); mkdirError != nil {
		return nil, fmt.Errorf(createDirectoryErrorTemplateConstant, directory, mkdirError)
	}

	startedAt := clock()
	logFilePath := filepath.Join(directory, LogFileName(startedAt))
	sink := &lumberjack.Logger{
		Filename: logFilePath,
		MaxSize:  maximumLogFileSizeMegabytesConstant,
	}

	logger, loggerError := options.LoggerFactory.CreateWriterLogger(options.Level, options.Format, sink)
	if loggerError != nil {
		_ = sink.Close()
		return nil, fmt.Errorf(createLoggerErrorTemplateConstant, loggerError)
	}

	logger.Info(sessionStartedMessageConstant,
		zap.String(logFieldLogFileConstant, logFilePath),
		zap.Time(logFieldStartedAtConstant, startedAt),
	)

	return &Session{
		Logger:      logger,
		LogFilePath: logFilePath,
		StartedAt:   startedAt,
		clock:       clock,
		sink:        sink,
	}, nil
}

// LogFileName returns the log file name for a session started at the provided time.
func LogFileName(startedAt time.Time) string {
	return fmt.Sprintf(logFileNameTemplateConstant, startedAt.Format(logFileTimestampLayoutConstant))
}

// Close records the session end, flushes the logger, and closes the file.
func (session *Session) Close() error {
	if session == nil || session.sink == nil {
		return nil
	}

	session.Logger.Info(sessionFinishedMessageConstant, zap.Duration(logFieldDurationConstant, session.clock().Sub(session.StartedAt)))
	syncError := session.Logger.Sync()
	closeError := session.sink.Close()
	session.sink = nil

	return errors.Join(syncError, closeError)
}
