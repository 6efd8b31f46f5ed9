// Copyright 2020 goarp authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package goarp

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// UnknownVendor is reported when the vendor of an address is not known.
const UnknownVendor = "Unknown"

// VendorLookup names the manufacturer of a hardware address. It never fails:
// anything it cannot answer is UnknownVendor.
type VendorLookup interface {
	Vendor(hw HWaddr) string
}

// NoVendors is the VendorLookup used when no vendor data is available.
type NoVendors struct{}

func (NoVendors) Vendor(HWaddr) string { return UnknownVendor }

// OUITable maps organizationally unique identifiers, the first three bytes
// of a hardware address written as six uppercase hex digits, to vendor names.
type OUITable map[string]string

// LoadOUITable reads one "OUI vendor name" pair per line. The OUI may be
// written as AABBCC, AA:BB:CC or AA-BB-CC. Blank lines and lines starting
// with '#' are skipped.
func LoadOUITable(r io.Reader) (OUITable, error) {
	table := make(OUITable)
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d: missing vendor name", ErrInvalidFormat, lineno)
		}
		oui := strings.NewReplacer(":", "", "-", "").Replace(fields[0])
		if b, err := hex.DecodeString(oui); err != nil || len(b) != 3 {
			return nil, fmt.Errorf("%w: line %d: bad OUI %q", ErrInvalidFormat, lineno, fields[0])
		}
		name := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		table[strings.ToUpper(oui)] = name
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

func (t OUITable) Vendor(hw HWaddr) string {
	if name, ok := t[ouiKey(hw)]; ok {
		return name
	}
	return UnknownVendor
}
