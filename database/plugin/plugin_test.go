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

package plugin_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/numbat/database"
	"github.com/blinklabs-io/numbat/database/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPluginOption(t *testing.T) {
	// Set data-dir for sqlite plugin to an empty string (in-memory) and ensure no error
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, database.DefaultMetadataPlugin, "data-dir", ""))

	// Setting with wrong type should return an error
	require.Error(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, database.DefaultMetadataPlugin, "data-dir", 123))

	// Setting an unknown option is a no-op (non-fatal) so should not return an error
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, database.DefaultMetadataPlugin, "does-not-exist", "x"))

	// uint options accept uint64 and non-negative int
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, database.DefaultBlobPlugin, "block-cache-size", uint64(100000000)))
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, database.DefaultBlobPlugin, "block-cache-size", 134217728))
	require.Error(t, plugin.SetPluginOption(plugin.PluginTypeBlob, database.DefaultBlobPlugin, "block-cache-size", -1))

	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, database.DefaultBlobPlugin, "gc", true))

	// Test plugin not found error
	require.Error(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, "nonexistent", "data-dir", t.TempDir()))

	// Restore in-memory defaults for other tests
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, database.DefaultBlobPlugin, "data-dir", ""))
}

func TestStartPlugin(t *testing.T) {
	_, err := plugin.StartPlugin(plugin.PluginTypeBlob, "missing", plugin.PluginContext{})
	require.Error(t, err)

	startErr := errors.New("boom")
	plugin.Register(plugin.PluginEntry{
		Type: plugin.PluginTypeBlob,
		Name: "error-" + t.Name(),
		NewFromOptionsFunc: func(plugin.PluginContext) plugin.Plugin {
			return plugin.NewErrorPlugin(startErr)
		},
	})
	_, err = plugin.StartPlugin(plugin.PluginTypeBlob, "error-"+t.Name(), plugin.PluginContext{})
	require.ErrorIs(t, err, startErr)

	name := "mock-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeMetadata,
		Name:               name,
		NewFromOptionsFunc: newMockPlugin,
	})
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, name, plugin.PluginContext{})
	require.NoError(t, err)
	mock, ok := p.(*mockPlugin)
	require.True(t, ok)
	assert.True(t, mock.started)
}
