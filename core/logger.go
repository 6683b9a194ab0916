/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
)

var shouldPrintTraceLogs = false
var logLevel = log.InfoLevel
var logFileObj *os.File
var logClock func() time.Time
var logEpoch time.Time

// InitializeLogger initializes the logger.
func InitializeLogger(logFile string) error {
	var out io.Writer = os.Stdout
	if logFile != "" {
		var err error
		logFileObj, err = os.Create(logFile)
		if err != nil {
			return err
		}
		out = logFileObj
	}
	log.SetHandler(text.New(out))
	SetLogLevel(GetConfig().Core.LogLevel)
	return nil
}

// SetLogLevel changes the active log level by name.
func SetLogLevel(logLevelString string) {
	var err error
	shouldPrintTraceLogs = false
	logLevel, err = log.ParseLevel(strings.ToLower(logLevelString))
	if err == nil {
		log.SetLevel(logLevel)
	} else if strings.ToUpper(logLevelString) == "TRACE" {
		// Apex doesn't support the TRACE level, so we have to work around that by calling them DEBUG,
		// but not printing them if not TRACE
		logLevel = log.DebugLevel
		log.SetLevel(log.DebugLevel)
		shouldPrintTraceLogs = true
	} else {
		logLevel = log.InfoLevel
		log.SetLevel(log.InfoLevel)
	}
}

// ShutdownLogger shuts down the logger.
func ShutdownLogger() {
	if logFileObj != nil {
		logFileObj.Close()
		logFileObj = nil
	}
}

// SetLogClock stamps every following message with the time elapsed on clock
// since this call. A nil clock removes the stamp.
func SetLogClock(clock func() time.Time) {
	logClock = clock
	if clock != nil {
		logEpoch = clock()
	}
}

func logger() log.Interface {
	if logClock == nil {
		return log.Log
	}
	return log.WithField("sim_time", logClock().Sub(logEpoch))
}

func generateLogMessage(module interface{}, components ...interface{}) string {
	var message strings.Builder
	message.WriteString(fmt.Sprintf("[%v] ", module))
	for _, component := range components {
		switch v := component.(type) {
		case string:
			message.WriteString(v)
		case int:
			message.WriteString(strconv.Itoa(v))
		case int64:
			message.WriteString(strconv.FormatInt(v, 10))
		case uint32:
			message.WriteString(strconv.FormatUint(uint64(v), 10))
		case uint64:
			message.WriteString(strconv.FormatUint(v, 10))
		case bool:
			message.WriteString(strconv.FormatBool(v))
		case error:
			message.WriteString(v.Error())
		case fmt.Stringer:
			message.WriteString(v.String())
		default:
			message.WriteString(fmt.Sprintf("%v", component))
		}
	}
	return message.String()
}

// LogFatal logs a message at the FATAL level. Note: Fatal will let the program exit
func LogFatal(module interface{}, components ...interface{}) {
	if logLevel <= log.FatalLevel {
		logger().Fatal(generateLogMessage(module, components...))
	}
}

// LogError logs a message at the ERROR level.
func LogError(module interface{}, components ...interface{}) {
	if logLevel <= log.ErrorLevel {
		logger().Error(generateLogMessage(module, components...))
	}
}

// LogWarn logs a message at the WARN level.
func LogWarn(module interface{}, components ...interface{}) {
	if logLevel <= log.WarnLevel {
		logger().Warn(generateLogMessage(module, components...))
	}
}

// LogInfo logs a message at the INFO level.
func LogInfo(module interface{}, components ...interface{}) {
	if logLevel <= log.InfoLevel {
		logger().Info(generateLogMessage(module, components...))
	}
}

// LogDebug logs a message at the DEBUG level.
func LogDebug(module interface{}, components ...interface{}) {
	if logLevel <= log.DebugLevel {
		logger().Debug(generateLogMessage(module, components...))
	}
}

// LogTrace logs a message at the TRACE level (really just additional DEBUG messages).
func LogTrace(module interface{}, components ...interface{}) {
	if shouldPrintTraceLogs {
		logger().Debug(generateLogMessage(module, components...))
	}
}
