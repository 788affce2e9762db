// Copyright 2024 The Reservation Authors
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
//
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laizhenxing/xreservation/internal/rsvperr"
)

func TestConfigSearchPathsOrder(t *testing.T) {
	paths := configSearchPaths("/home/test")
	require.Len(t, paths, 3)
	assert.Equal(t, "reservation.yml", paths[0])
	assert.Equal(t, filepath.Join("/home/test", ".config", "reservation.yml"), paths[1])
	assert.Equal(t, filepath.Join(string(filepath.Separator), "etc", "reservation.yml"), paths[2])
}

func TestConfigSearchPathsSkipsEmptyHome(t *testing.T) {
	paths := configSearchPaths("")
	require.Len(t, paths, 2)
}

func TestLoad_MissingFileIsConfigReadError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.ConfigReadError, rerr.Kind)
}

func TestLoad_MalformedYAMLIsConfigParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reservation.yml")
	require.NoError(t, os.WriteFile(path, []byte("db: [this is not a mapping"), 0o600))

	_, err := Load(path)
	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.ConfigParseError, rerr.Kind)
}

func TestLoad_MissingRequiredFieldIsConfigParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reservation.yml")
	require.NoError(t, os.WriteFile(path, []byte("db:\n  dbname: rsvp\nserver:\n  host: 0.0.0.0\n  port: 9090\n"), 0o600))

	_, err := Load(path)
	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.ConfigParseError, rerr.Kind)
}

func TestLoad_ValidConfigAppliesDefaultMaxConns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reservation.yml")
	require.NoError(t, os.WriteFile(path, []byte(
		"db:\n  host: localhost\n  dbname: rsvp\nserver:\n  host: 0.0.0.0\n  port: 9090\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.DB.MaxConns)
	assert.Equal(t, 9090, cfg.Server.Port)
}
