package goarp

import (
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVendorDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vendors.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE Vendors (mac TEXT PRIMARY KEY, vendor TEXT)")
	require.NoError(t, err)
	for mac, vendor := range map[string]string{
		"00000C": "Cisco Systems, Inc",
		"B827EB": "Raspberry Pi Foundation",
	} {
		_, err = db.Exec("INSERT INTO Vendors (mac, vendor) VALUES (?, ?)", mac, vendor)
		require.NoError(t, err)
	}
	return path
}

func TestVendorDB(t *testing.T) {
	vendors, err := OpenVendorDB(writeVendorDB(t))
	require.NoError(t, err)
	defer vendors.Close()

	tests := []struct {
		hw     string
		vendor string
	}{
		{"00:00:0c:12:34:56", "Cisco Systems, Inc"},
		{"b8:27:eb:00:00:01", "Raspberry Pi Foundation"},
		{"11:22:33:44:55:66", UnknownVendor},
	}

	for _, tc := range tests {
		t.Run(tc.hw, func(t *testing.T) {
			hw, err := ParseHWaddr(tc.hw)
			require.NoError(t, err)
			assert.Equal(t, tc.vendor, vendors.Vendor(hw))
		})
	}
}

func TestVendorDBWithoutTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE Other (id INTEGER)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	vendors, err := OpenVendorDB(path)
	require.NoError(t, err)
	defer vendors.Close()
	assert.Equal(t, UnknownVendor, vendors.Vendor(HWaddr{0x00, 0x00, 0x0c, 1, 2, 3}))
}

func TestOpenVendorDBMissing(t *testing.T) {
	_, err := OpenVendorDB(filepath.Join(t.TempDir(), "missing.db"))
	var sysErr *SysError
	require.ErrorAs(t, err, &sysErr)
	assert.Equal(t, "open", sysErr.Op)
}

func TestOpenVendors(t *testing.T) {
	lookup, err := OpenVendors(writeVendorDB(t))
	require.NoError(t, err)
	require.IsType(t, &VendorDB{}, lookup)
	assert.Equal(t, "Cisco Systems, Inc", lookup.Vendor(HWaddr{0x00, 0x00, 0x0c, 1, 2, 3}))
	require.NoError(t, lookup.(io.Closer).Close())

	path := filepath.Join(t.TempDir(), "oui.txt")
	require.NoError(t, os.WriteFile(path, []byte(ouiSample), 0o644))
	lookup, err = OpenVendors(path)
	require.NoError(t, err)
	require.IsType(t, OUITable{}, lookup)
	assert.Equal(t, "Raspberry Pi Foundation", lookup.Vendor(HWaddr{0xb8, 0x27, 0xeb, 0, 0, 1}))

	_, err = OpenVendors(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
