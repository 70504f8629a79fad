// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// maxLineBytes caps a single captured line; the rest of the line is dropped.
const maxLineBytes = 1 << 20

// Capture reads r line by line and calls emit for each line, without its
// terminator. A trailing partial line is emitted at EOF. It returns when r
// is exhausted or fails; read errors other than EOF are returned.
func Capture(r io.Reader, emit func(string)) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var (
		buf       strings.Builder
		truncated bool
	)

	flush := func() {
		emit(strings.TrimSuffix(buf.String(), "\r"))
		buf.Reset()
		truncated = false
	}

	for {
		chunk, isPrefix, err := br.ReadLine()
		if len(chunk) > 0 && !truncated {
			room := maxLineBytes - buf.Len()
			if len(chunk) > room {
				chunk = chunk[:room]
				truncated = true
			}
			buf.Write(chunk)
		}
		if err != nil {
			if buf.Len() > 0 || truncated {
				flush()
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
		if !isPrefix {
			flush()
		}
	}
}
