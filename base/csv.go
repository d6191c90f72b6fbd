// Copyright 2021 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import (
	"bufio"
	"io"
	"slices"
	"strings"

	"github.com/juju/errors"
)

const (
	byteOrderMark = '\uFEFF'
	maxLineSize   = 16 * 1024 * 1024
)

// ValidateId rejects empty or blank ids.
func ValidateId(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.NotValidf("blank id")
	}
	return nil
}

// ValidateSeparator rejects separators that cannot split a record: empty ones
// and ones containing quotes or line breaks.
func ValidateSeparator(sep string) error {
	if sep == "" {
		return errors.NotValidf("empty separator")
	}
	if strings.ContainsAny(sep, "\"\r\n") {
		return errors.NotValidf("separator %q", sep)
	}
	return nil
}

// LineReader splits delimited text into records. The separator may span
// several characters ("::" in MovieLens dumps). Double quotes group a field
// holding separators or line breaks, and "" inside quotes is a literal quote.
// A leading UTF-8 byte order mark is dropped.
type LineReader struct {
	sc  *bufio.Scanner
	sep []rune
}

func NewLineReader(r io.Reader, sep string) (*LineReader, error) {
	if err := ValidateSeparator(sep); err != nil {
		return nil, errors.Trace(err)
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &LineReader{sc: sc, sep: []rune(sep)}, nil
}

// ReadLines calls handler with the fields of every record and the zero-based
// physical line the record starts at. It stops early once handler returns false.
func (r *LineReader) ReadLines(handler func(int, []string) bool) error {
	var (
		lineCount int
		start     int
		fields    []string
		builder   strings.Builder
		quoted    bool
	)
	for r.sc.Scan() {
		line := []rune(r.sc.Text())
		if lineCount == 0 && len(line) > 0 && line[0] == byteOrderMark {
			line = line[1:]
		}
		if quoted {
			builder.WriteString("\r\n")
		}
		for i := 0; i < len(line); i++ {
			switch {
			case !quoted && r.atSeparator(line, i):
				fields = append(fields, builder.String())
				builder.Reset()
				i += len(r.sep) - 1
			case line[i] == '"':
				if quoted && i+1 < len(line) && line[i+1] == '"' {
					builder.WriteRune('"')
					i++
				} else {
					quoted = !quoted
				}
			default:
				builder.WriteRune(line[i])
			}
		}
		lineCount++
		if quoted {
			continue
		}
		fields = append(fields, builder.String())
		builder.Reset()
		if !handler(start, fields) {
			return nil
		}
		fields = nil
		start = lineCount
	}
	return errors.Trace(r.sc.Err())
}

func (r *LineReader) atSeparator(line []rune, i int) bool {
	return i+len(r.sep) <= len(line) && slices.Equal(line[i:i+len(r.sep)], r.sep)
}
