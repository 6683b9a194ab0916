/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package app

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Columns of the tab-separated access log.
const (
	traceColumnName      = 3
	traceColumnTimestamp = 9
	traceColumnSize      = 14
)

// traceSizeIgnored marks requests that never reached the data server.
const traceSizeIgnored = -2

// TraceRequest is one object request of the access log.
type TraceRequest struct {
	Object    string
	Size      float64
	Timestamp int64
}

// TraceFile returns the path of the trace of the client with address ip.
func TraceFile(dir string, ip string) string {
	return filepath.Join(dir, ip+".client.txt")
}

// LoadTrace reads the requests of the client with address ip from dir.
func LoadTrace(dir string, ip string) ([]TraceRequest, error) {
	file := TraceFile(dir, ip)
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open trace %s", file)
	}
	defer f.Close()

	requests, err := ParseTrace(f, ip)
	if err != nil {
		return nil, errors.Wrapf(err, "trace %s", file)
	}
	return requests, nil
}

// ParseTrace reads the requests of lines mentioning ip. Requests with the
// ignored size marker are skipped.
func ParseTrace(r io.Reader, ip string) ([]TraceRequest, error) {
	requests := make([]TraceRequest, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if !strings.Contains(line, ip) {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) <= traceColumnSize {
			return nil, errors.Wrapf(ErrTraceFormat, "line %d has %d columns", lineNum, len(parts))
		}
		size, err := strconv.ParseFloat(strings.TrimSpace(parts[traceColumnSize]), 64)
		if err != nil {
			return nil, errors.Wrapf(ErrTraceFormat, "line %d: size %q", lineNum, parts[traceColumnSize])
		}
		if size == traceSizeIgnored {
			continue
		}
		timestamp, err := strconv.ParseInt(strings.TrimSpace(parts[traceColumnTimestamp]), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrTraceFormat, "line %d: timestamp %q", lineNum, parts[traceColumnTimestamp])
		}
		object := strings.Trim(parts[traceColumnName], "/ ")
		if object == "" {
			return nil, errors.Wrapf(ErrTraceFormat, "line %d: empty object name", lineNum)
		}

		requests = append(requests, TraceRequest{
			Object:    object,
			Size:      size,
			Timestamp: timestamp,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to read trace")
	}
	return requests, nil
}
