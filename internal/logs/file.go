// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	timeLayout  = "15:04:05"
	prefixLen   = len("[15:04:05] ")
	writerQueue = 4096
)

// FormatLine renders line the way it is stored on disk.
func FormatLine(line Line) string {
	return "[" + line.Time.Format(timeLayout) + "] " + line.Text
}

// ParseLine reverses FormatLine. The date is taken from day since files
// only record the time of day. Lines without a prefix keep their text and
// get day as their time.
func ParseLine(s string, day time.Time) Line {
	if len(s) >= prefixLen && s[0] == '[' && s[prefixLen-2] == ']' && s[prefixLen-1] == ' ' {
		if t, err := time.ParseInLocation(timeLayout, s[1:prefixLen-2], day.Location()); err == nil {
			y, m, d := day.Date()
			ts := time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, day.Location())
			return Line{Time: ts, Text: s[prefixLen:]}
		}
	}
	return Line{Time: day, Text: s}
}

// writeResult is the outcome of a best-effort file operation. Append results
// are logged and discarded; truncation results are returned to the caller.
type writeResult struct {
	Path string
	Err  error
}

func (r writeResult) logIfFailed(msg string) {
	if r.Err != nil {
		log.Warn(msg, "path", r.Path, "err", r.Err)
	}
}

type fileOp struct {
	key   Key
	text  string // append payload
	trunc int    // > 0: truncate to this many lines
	reply chan writeResult
}

// fileWriter owns every open log file. A single goroutine applies appends
// and truncations in the order they were queued.
type fileWriter struct {
	dir   string
	queue chan fileOp
	done  chan struct{}
	files map[Key]*os.File

	mu     sync.RWMutex
	closed bool
}

func newFileWriter(dir string) *fileWriter {
	w := &fileWriter{
		dir:   dir,
		queue: make(chan fileOp, writerQueue),
		done:  make(chan struct{}),
		files: make(map[Key]*os.File),
	}
	go w.run()
	return w
}

// Path returns the log file path for key.
func (w *fileWriter) Path(key Key) string {
	return filepath.Join(w.dir, key.Project, key.App+".log")
}

// enqueue hands op to the writer goroutine. Returns false once closed.
func (w *fileWriter) enqueue(op fileOp) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	w.queue <- op
	return true
}

func (w *fileWriter) append(key Key, text string) {
	w.enqueue(fileOp{key: key, text: text})
}

func (w *fileWriter) truncate(key Key, keep int) error {
	reply := make(chan writeResult, 1)
	if !w.enqueue(fileOp{key: key, trunc: keep, reply: reply}) {
		return nil
	}
	return (<-reply).Err
}

// flush waits until every previously queued op has been applied.
func (w *fileWriter) flush() {
	reply := make(chan writeResult, 1)
	if w.enqueue(fileOp{reply: reply}) {
		<-reply
	}
}

func (w *fileWriter) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()
	<-w.done
}

func (w *fileWriter) run() {
	defer close(w.done)
	defer func() {
		for _, f := range w.files {
			f.Close()
		}
	}()

	for op := range w.queue {
		switch {
		case op.trunc > 0:
			op.reply <- w.doTruncate(op.key, op.trunc)
		case op.reply != nil:
			op.reply <- writeResult{}
		default:
			w.doAppend(op.key, op.text).logIfFailed("Failed to append to log file")
		}
	}
}

func (w *fileWriter) open(key Key) (*os.File, error) {
	if f, ok := w.files[key]; ok {
		return f, nil
	}
	path := w.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	w.files[key] = f
	return f, nil
}

func (w *fileWriter) doAppend(key Key, text string) writeResult {
	res := writeResult{Path: w.Path(key)}
	f, err := w.open(key)
	if err != nil {
		res.Err = err
		return res
	}
	_, res.Err = f.WriteString(text + "\n")
	return res
}

func (w *fileWriter) doTruncate(key Key, keep int) writeResult {
	path := w.Path(key)
	res := writeResult{Path: path}

	lines, err := readLines(path)
	if err != nil {
		if !os.IsNotExist(err) {
			res.Err = fmt.Errorf("read log file: %w", err)
		}
		return res
	}
	if len(lines) <= keep {
		return res
	}
	lines = lines[len(lines)-keep:]

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		res.Err = fmt.Errorf("write truncated log: %w", err)
		return res
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		res.Err = fmt.Errorf("rename truncated log: %w", err)
		return res
	}

	// The old handle points at the replaced inode.
	if f, ok := w.files[key]; ok {
		f.Close()
		delete(w.files, key)
	}
	return res
}

// readLines returns the non-empty lines of the file at path.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes+1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
