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
	"fmt"
	"net"
	"strconv"
	"strings"
)

// HWaddrLen is the length of an Ethernet hardware address, in bytes.
const HWaddrLen = 6

// HWaddr is a 48 bit Ethernet hardware address.
type HWaddr [HWaddrLen]byte

var (
	BcastHWaddr = HWaddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

// ParseHWaddr parses the colon separated hex form, e.g. "aa:bb:cc:dd:ee:ff".
// Each octet takes one or two hex digits.
func ParseHWaddr(s string) (HWaddr, error) {
	var hw HWaddr
	toks := strings.Split(s, ":")
	if len(toks) != HWaddrLen {
		return hw, fmt.Errorf("%w: %q is not a valid MAC address", ErrInvalidFormat, s)
	}
	for i, tok := range toks {
		if len(tok) == 0 || len(tok) > 2 {
			return hw, fmt.Errorf("%w: %q is not a valid MAC address", ErrInvalidFormat, s)
		}
		b, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return hw, fmt.Errorf("%w: %q is not a valid MAC address", ErrInvalidFormat, s)
		}
		hw[i] = byte(b)
	}
	return hw, nil
}

// HWaddrFromBytes copies the first six bytes of b. It fails when b is shorter than that.
func HWaddrFromBytes(b []byte) (HWaddr, error) {
	var hw HWaddr
	if len(b) < HWaddrLen {
		return hw, fmt.Errorf("%w: %d bytes is not a valid MAC address", ErrInvalidFormat, len(b))
	}
	copy(hw[:], b)
	return hw, nil
}

func (hw HWaddr) String() string {
	const hexDigit = "0123456789abcdef"
	buf := make([]byte, 0, HWaddrLen*3-1)
	for i, b := range hw {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = append(buf, hexDigit[b>>4], hexDigit[b&0xf])
	}
	return string(buf)
}

// IsNull reports whether all six bytes are zero.
func (hw HWaddr) IsNull() bool {
	return hw == HWaddr{}
}

// Equal reports whether hw and other hold the same six bytes.
func (hw HWaddr) Equal(other HWaddr) bool {
	return hw == other
}

// HardwareAddr returns a copy of hw as a net.HardwareAddr.
func (hw HWaddr) HardwareAddr() net.HardwareAddr {
	out := make(net.HardwareAddr, HWaddrLen)
	copy(out, hw[:])
	return out
}
