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

// Package server binds the RPC transport to the manager and owns the
// YAML config/bootstrap lifecycle.
package server

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/laizhenxing/xreservation/internal/rsvperr"
)

func rsvpErrConfigRead(detail string) error  { return rsvperr.New(rsvperr.ConfigReadError, detail) }
func rsvpErrConfigParse(detail string) error { return rsvperr.New(rsvperr.ConfigParseError, detail) }

// DBConfig is the `db:` section of the config file.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	MaxConns int    `yaml:"max_connections"`
}

// ServerConfig is the `server:` section of the config file.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Config is the user-visible configuration for running the
// reservation service, built by loading and parsing the YAML file
// found by Locate. Construction, population, and validation stay as
// three separate steps even though population here is a single
// yaml.Unmarshal call.
type Config struct {
	DB     DBConfig     `yaml:"db"`
	Server ServerConfig `yaml:"server"`
}

// defaultMaxConns is the pool size used when max_connections is left
// at its zero value in the config file.
const defaultMaxConns = 5

// configSearchPaths is the config file resolution order: current
// directory, then the user's config directory, then /etc. home is a
// parameter (Locate passes os.UserHomeDir) rather than resolved
// here, so tests can check the search order with a fixed home
// directory.
func configSearchPaths(home string) []string {
	paths := []string{"reservation.yml"}
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "reservation.yml"))
	}
	paths = append(paths, filepath.Join(string(filepath.Separator), "etc", "reservation.yml"))
	return paths
}

// Locate walks the config search order and returns the first path
// that exists. Missing at all three is a fatal startup error.
func Locate() (string, error) {
	home, _ := os.UserHomeDir()
	for _, p := range configSearchPaths(home) {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", rsvpErrConfigRead("no config file found in ./reservation.yml, ~/.config/reservation.yml, or /etc/reservation.yml")
}

// Load reads and parses the YAML file at path into a Config and runs
// Preflight. ConfigReadError and ConfigParseError are the two error
// kinds reserved for startup failures; Load and Locate are their only
// producers.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, rsvpErrConfigRead(errors.Wrap(err, "reading config file").Error())
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, rsvpErrConfigParse(errors.Wrap(err, "parsing config file").Error())
	}

	c.applyDefaults()
	if err := c.Preflight(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.DB.MaxConns == 0 {
		c.DB.MaxConns = defaultMaxConns
	}
}

// Preflight validates a populated Config before it is used to open a
// pool or bind a listener.
func (c *Config) Preflight() error {
	if c.DB.Host == "" {
		return rsvpErrConfigParse("db.host unset")
	}
	if c.DB.DBName == "" {
		return rsvpErrConfigParse("db.dbname unset")
	}
	if c.Server.Host == "" {
		return rsvpErrConfigParse("server.host unset")
	}
	if c.Server.Port == 0 {
		return rsvpErrConfigParse("server.port unset")
	}
	if c.DB.MaxConns <= 0 {
		return rsvpErrConfigParse("db.max_connections must be positive")
	}
	return nil
}
