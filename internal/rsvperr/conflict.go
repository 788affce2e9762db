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

package rsvperr

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/laizhenxing/xreservation/internal/types"
)

// A storage engine's exclusion-violation detail string looks like:
//
//	Key (resource_id, timespan)=(r1, ["2023-01-02 17:10:10+00","2023-01-05 17:10:10+00")) conflicts with existing key (resource_id, timespan)=(r1, ["2023-01-01 17:10:10+00","2023-01-04 17:10:10+00"))
//
// It splits cleanly on the literal " conflicts with existing key "
// separator into two "(columns)=(values)" halves: the attempted
// (new) row first, the existing (old) row second.
var (
	conflictSeparator = " conflicts with existing key "
	newHalf           = regexp.MustCompile(`^Key \(([^)]*)\)=\((.*)\)$`)
	oldHalf           = regexp.MustCompile(`^\(([^)]*)\)=\((.*)\)$`)
)

// ParseConflict turns a storage engine's exclusion-violation detail
// string into a structured Conflict. On any parse failure it returns
// a non-nil error and the caller should fall back to UnparsedConflict.
func ParseConflict(detail string) (*types.Conflict, error) {
	halves := strings.SplitN(strings.TrimSpace(detail), conflictSeparator, 2)
	if len(halves) != 2 {
		return nil, fmt.Errorf("expected 2 key/value pairs in conflict detail, found %d", len(halves))
	}

	newMatch := newHalf.FindStringSubmatch(halves[0])
	if newMatch == nil {
		return nil, fmt.Errorf("could not parse new key/value pair: %q", halves[0])
	}
	oldMatch := oldHalf.FindStringSubmatch(halves[1])
	if oldMatch == nil {
		return nil, fmt.Errorf("could not parse existing key/value pair: %q", halves[1])
	}

	newWindow, err := parseKeyValue(newMatch[1], newMatch[2])
	if err != nil {
		return nil, err
	}
	oldWindow, err := parseKeyValue(oldMatch[1], oldMatch[2])
	if err != nil {
		return nil, err
	}

	return &types.Conflict{New: newWindow, Old: oldWindow}, nil
}

// parseKeyValue decodes a "resource_id, timespan" / "r1, [start,end))"
// column/value pair into a ReservationWindow.
func parseKeyValue(columnList, valueList string) (types.ReservationWindow, error) {
	columns := splitTrim(columnList, ",")
	values := splitParenValues(valueList)
	if len(columns) != len(values) {
		return types.ReservationWindow{}, fmt.Errorf(
			"column/value count mismatch: %d columns, %d values", len(columns), len(values))
	}

	var resourceID, timespan string
	for i, col := range columns {
		switch col {
		case "resource_id":
			resourceID = values[i]
		case "timespan":
			timespan = values[i]
		}
	}
	if resourceID == "" {
		return types.ReservationWindow{}, fmt.Errorf("no resource_id column in conflict detail")
	}
	if timespan == "" {
		return types.ReservationWindow{}, fmt.Errorf("no timespan column in conflict detail")
	}

	start, end, err := parseTimespan(timespan)
	if err != nil {
		return types.ReservationWindow{}, err
	}
	return types.ReservationWindow{ResourceID: resourceID, Start: start, End: end}, nil
}

// parseTimespan decodes a range literal of the form `[start,end)`,
// with quoted instants in `YYYY-MM-DD HH:MM:SS±ZZ` form, into a pair
// of UTC instants.
func parseTimespan(s string) (start, end time.Time, err error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, ")")

	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("malformed timespan literal %q", s)
	}

	startStr := strings.Trim(strings.TrimSpace(parts[0]), `"`)
	endStr := strings.Trim(strings.TrimSpace(parts[1]), `"`)

	start, err = parseInstant(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = parseInstant(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start.UTC(), end.UTC(), nil
}

const instantLayout = "2006-01-02 15:04:05-07"

func parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(instantLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed instant %q: %w", s, err)
	}
	return t, nil
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// splitParenValues splits a "r1, [2023-...,2023-...)" value list on
// top-level commas only, so that the comma inside the timespan's range
// literal isn't mistaken for a field separator.
func splitParenValues(s string) []string {
	var out []string
	depth := 0
	last := 0
	for i, r := range s {
		switch r {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	out = append(out, strings.TrimSpace(s[last:]))
	return out
}
