package main

import (
	"bufio"
	"bytes"
	"io"
)

const maxRecordLen = 1 << 20

// splitRecords is a bufio.SplitFunc yielding records terminated by CR, LF or
// CR LF. Empty records are skipped.
func splitRecords(data []byte, atEOF bool) (int, []byte, error) {
	start := 0
	for start < len(data) && (data[start] == '\r' || data[start] == '\n') {
		start++
	}

	if i := bytes.IndexAny(data[start:], "\r\n"); i >= 0 {
		return start + i + 1, data[start : start+i], nil
	}

	if atEOF && start < len(data) {
		return len(data), data[start:], nil
	}

	return start, nil, nil
}

// readRecords returns the record lines of r.
func readRecords(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecordLen)
	sc.Split(splitRecords)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}

	return lines, sc.Err()
}
