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
	"bytes"
	"database/sql"
	"encoding/hex"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/projectdiscovery/gologger"
	_ "modernc.org/sqlite"
)

// VendorDB looks vendors up in a SQLite database with a Vendors(mac, vendor)
// table, mac being the OUI as six uppercase hex digits.
type VendorDB struct {
	db *sql.DB
}

// OpenVendorDB opens the database at path read-only.
func OpenVendorDB(path string) (*VendorDB, error) {
	dsn := (&url.URL{Scheme: "file", Opaque: path, RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, newSysError("open", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, newSysError("open", path, err)
	}
	return &VendorDB{db: db}, nil
}

// Vendor returns UnknownVendor when the OUI of hw is missing or the query fails.
func (v *VendorDB) Vendor(hw HWaddr) string {
	var vendor string
	err := v.db.QueryRow("SELECT vendor FROM Vendors WHERE mac = ? LIMIT 1", ouiKey(hw)).Scan(&vendor)
	if err != nil {
		if err != sql.ErrNoRows {
			gologger.Debug().Msgf("vendor of %s: %s", hw, err)
		}
		return UnknownVendor
	}
	return vendor
}

func (v *VendorDB) Close() error {
	return v.db.Close()
}

var sqliteMagic = []byte("SQLite format 3\x00")

// OpenVendors opens the vendor source at path: a SQLite database when the
// file starts with the SQLite header, an OUI table otherwise. The returned
// lookup may implement io.Closer.
func OpenVendors(path string) (VendorLookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, newSysError("read", path, err)
	}
	if bytes.Equal(header[:n], sqliteMagic) {
		return OpenVendorDB(path)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, newSysError("seek", path, err)
	}
	return LoadOUITable(f)
}

func ouiKey(hw HWaddr) string {
	return strings.ToUpper(hex.EncodeToString(hw[:3]))
}
