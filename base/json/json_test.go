// Copyright 2022 gorse Project Authors
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

package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnmarshalEmpty(t *testing.T) {
	m := map[string]int32{"a": 1}
	assert.NoError(t, Unmarshal(nil, &m))
	assert.Nil(t, m)
}

func TestEncoderSortsKeys(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, NewEncoder(&buf).Encode(map[int32]string{2: "9", 0: "7", 1: "3"}))
	assert.Equal(t, `{"0":"7","1":"3","2":"9"}`+"\n", buf.String())
	data, err := Marshal(map[string]int32{"9": 2, "7": 0, "3": 1})
	assert.NoError(t, err)
	assert.Equal(t, `{"3":1,"7":0,"9":2}`, string(data))
}

func TestDecoder(t *testing.T) {
	var m map[string]int32
	assert.NoError(t, NewDecoder(bytes.NewBufferString(`{"7":0}`)).Decode(&m))
	assert.Equal(t, map[string]int32{"7": 0}, m)
}
