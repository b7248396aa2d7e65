// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package feature

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"
)

// EncodeLabels packs an OSM tag set into the opaque label bytes carried by
// model.Decoded: a pair count followed by each key and its value in sorted
// key order, every string length-prefixed, serialized
// with encoding/binary so the result is self-describing and never needs an
// external dictionary to decode — a simplification of the bit-packed
// key-index/value-index scheme hauke96-simple-osm-queries's TagIndex uses,
// since here each record's labels stand on their own.
func EncodeLabels(tags map[string]string) []byte {
	if len(tags) == 0 {
		return nil
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	var buf bytes.Buffer

	_ = binary.Write(&buf, binary.BigEndian, uint32(len(keys)))

	for _, k := range keys {
		writeString(&buf, k)
		writeString(&buf, tags[k])
	}

	return buf.Bytes()
}

// DecodeLabels is the inverse of EncodeLabels. It is never called from the
// hot path of either pipeline phase — only from tests and the pbf/info
// introspection command.
func DecodeLabels(b []byte) (map[string]string, error) {
	if len(b) == 0 {
		return map[string]string{}, nil
	}

	r := bytes.NewReader(b)

	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}

	tags := make(map[string]string, n)

	for i := uint32(0); i < n; i++ {
		k, err := readString(r)
		if err != nil {
			return nil, err
		}

		v, err := readString(r)
		if err != nil {
			return nil, err
		}

		tags[k] = v
	}

	return tags, nil
}

func writeString(buf *bytes.Buffer, s string) {
	_ = binary.Write(buf, binary.BigEndian, uint32(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}

	return string(b), nil
}
