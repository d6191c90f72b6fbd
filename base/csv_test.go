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
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateId(t *testing.T) {
	assert.True(t, errors.Is(ValidateId(""), errors.NotValid))
	assert.True(t, errors.Is(ValidateId("  "), errors.NotValid))
	assert.NoError(t, ValidateId("abc"))
}

func TestValidateSeparator(t *testing.T) {
	assert.NoError(t, ValidateSeparator(","))
	assert.NoError(t, ValidateSeparator("::"))
	assert.NoError(t, ValidateSeparator("\t"))
	for _, sep := range []string{"", "\"", "\n", ";\r"} {
		assert.True(t, errors.Is(ValidateSeparator(sep), errors.NotValid), "%q", sep)
	}
	_, err := NewLineReader(strings.NewReader("1,2"), "")
	assert.True(t, errors.Is(err, errors.NotValid))
}

type record struct {
	line   int
	fields []string
}

func readRecords(t *testing.T, text, sep string) []record {
	reader, err := NewLineReader(strings.NewReader(text), sep)
	require.NoError(t, err)
	var records []record
	err = reader.ReadLines(func(line int, fields []string) bool {
		records = append(records, record{line, fields})
		return fields[0] != "STOP"
	})
	assert.NoError(t, err)
	return records
}

func splitLines(t *testing.T, text, sep string) [][]string {
	var lines [][]string
	for _, r := range readRecords(t, text, sep) {
		lines = append(lines, r.fields)
	}
	return lines
}

func TestLineReader_Quotes(t *testing.T) {
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"4", "5", "6"}},
		splitLines(t, "1,2,3\r\n4,5,6\r\n", ","))
	assert.Equal(t, [][]string{{"u,1", "i,2"}},
		splitLines(t, "\"u,1\",\"i,2\"", ","))
	assert.Equal(t, [][]string{{"say \"hi\"", "x"}},
		splitLines(t, "\"say \"\"hi\"\"\",x", ","))
	assert.Equal(t, [][]string{{"1\r\n2", "3"}, {"4", "5"}},
		splitLines(t, "\"1\n2\",3\n4,5", ","))
	assert.Equal(t, [][]string{{"1", "2"}, {"STOP"}},
		splitLines(t, "1,2\nSTOP\n3,4", ","))
}

func TestLineReader_MultiCharSeparator(t *testing.T) {
	assert.Equal(t, [][]string{{"1", "10", "5", "0"}, {"2", "a:b", "4", "1"}},
		splitLines(t, "1::10::5::0\n2::a:b::4::1\n", "::"))
	assert.Equal(t, [][]string{{"1", "x::y"}},
		splitLines(t, "1::\"x::y\"", "::"))
	// a trailing partial separator stays in the field
	assert.Equal(t, [][]string{{"1", "2:"}},
		splitLines(t, "1::2:", "::"))
}

func TestLineReader_ByteOrderMark(t *testing.T) {
	assert.Equal(t, [][]string{{"user_id", "item_id"}, {"1", "\ufeff2"}},
		splitLines(t, "\ufeffuser_id,item_id\n1,\ufeff2\n", ","))
}

func TestLineReader_LineNumbers(t *testing.T) {
	records := readRecords(t, "a,b\n\"c\nd\",e\nf,g\n", ",")
	assert.Equal(t, []int{0, 1, 3}, []int{records[0].line, records[1].line, records[2].line})
}
