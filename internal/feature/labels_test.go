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

package feature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"m4o.io/tilequad/internal/feature"
)

func TestEncodeDecodeLabelsRoundTrip(t *testing.T) {
	tags := map[string]string{"highway": "primary", "name": "Foo Street", "lanes": "2"}

	encoded := feature.EncodeLabels(tags)
	assert.NotEmpty(t, encoded)

	decoded, err := feature.DecodeLabels(encoded)
	assert.NoError(t, err)
	assert.Equal(t, tags, decoded)
}

func TestEncodeLabelsEmpty(t *testing.T) {
	assert.Nil(t, feature.EncodeLabels(nil))
	assert.Nil(t, feature.EncodeLabels(map[string]string{}))

	decoded, err := feature.DecodeLabels(nil)
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{}, decoded)
}

func TestDecodeLabelsTruncated(t *testing.T) {
	_, err := feature.DecodeLabels([]byte{0, 0, 0, 1})
	assert.Error(t, err)
}
