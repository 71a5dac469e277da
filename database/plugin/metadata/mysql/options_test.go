// Copyright 2026 Blink Labs Software
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

package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnString(t *testing.T) {
	d, err := New(
		WithHost("db.example"),
		WithPort(3307),
		WithUser("gov"),
		WithPassword("secret"),
		WithDatabase("numbat_test"),
	)
	require.NoError(t, err)
	dsn := d.connString()
	assert.Contains(t, dsn, "gov:secret@tcp(db.example:3307)/numbat_test")
	assert.Contains(t, dsn, "parseTime=true")

	d, err = New(WithDSN("u:p@tcp(h:1)/db"))
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(h:1)/db", d.connString())
	assert.NoError(t, d.Close())
}
