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
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"net/netip"
)

// IPv4len is the length of an IPv4 address, in bytes.
const IPv4len = 4

// IPv4addr is an IPv4 address held in network byte order. The zero value is 0.0.0.0.
type IPv4addr [IPv4len]byte

// ParseIPv4addr parses s as a dotted-quad IPv4 address.
func ParseIPv4addr(s string) (IPv4addr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return IPv4addr{}, fmt.Errorf("%w: %q is not a valid IPv4 address", ErrInvalidFormat, s)
	}
	return IPv4addr(addr.As4()), nil
}

// IPv4addrFromUint32 builds an address from its host order integer value.
func IPv4addrFromUint32(v uint32) IPv4addr {
	var a IPv4addr
	binary.BigEndian.PutUint32(a[:], v)
	return a
}

// IPv4addrFromIP converts ip into an IPv4addr. ip must be an IPv4 or IPv4-mapped address.
func IPv4addrFromIP(ip net.IP) (IPv4addr, error) {
	ip4 := ip.To4()
	if ip4 == nil {
		return IPv4addr{}, fmt.Errorf("%w: %v is not an IPv4 address", ErrInvalidFormat, ip)
	}
	var a IPv4addr
	copy(a[:], ip4)
	return a, nil
}

// String returns the canonical dotted-quad form of a.
func (a IPv4addr) String() string {
	return netip.AddrFrom4(a).String()
}

// Uint32 returns the host order integer value of a.
func (a IPv4addr) Uint32() uint32 {
	return binary.BigEndian.Uint32(a[:])
}

// IP returns a as a 4 byte net.IP.
func (a IPv4addr) IP() net.IP {
	return net.IPv4(a[0], a[1], a[2], a[3]).To4()
}

// Compare orders addresses by their raw network order bytes.
func (a IPv4addr) Compare(b IPv4addr) int {
	return bytes.Compare(a[:], b[:])
}

// Equal reports whether a and b are the same address.
func (a IPv4addr) Equal(b IPv4addr) bool {
	return a == b
}

// Less reports whether a sorts before b. See [IPv4addr.Compare].
func (a IPv4addr) Less(b IPv4addr) bool {
	return a.Compare(b) < 0
}

// Add returns a+n. It fails with ErrOverflow or ErrUnderflow when the result
// does not fit in 32 bits.
func (a IPv4addr) Add(n int) (IPv4addr, error) {
	d := int64(n)
	switch {
	case d > math.MaxUint32:
		return a, ErrOverflow
	case d < -math.MaxUint32:
		return a, ErrUnderflow
	}
	return a.offset(d)
}

// Sub returns a-n. See [IPv4addr.Add].
func (a IPv4addr) Sub(n int) (IPv4addr, error) {
	d := int64(n)
	switch {
	case d > math.MaxUint32:
		return a, ErrUnderflow
	case d < -math.MaxUint32:
		return a, ErrOverflow
	}
	return a.offset(-d)
}

func (a IPv4addr) offset(d int64) (IPv4addr, error) {
	v := int64(a.Uint32()) + d
	if v > math.MaxUint32 {
		return a, ErrOverflow
	}
	if v < 0 {
		return a, ErrUnderflow
	}
	return IPv4addrFromUint32(uint32(v)), nil
}

// Inc increments a in place and returns the new value.
// On overflow a is left unchanged.
func (a *IPv4addr) Inc() (IPv4addr, error) {
	next, err := a.Add(1)
	if err != nil {
		return *a, err
	}
	*a = next
	return next, nil
}

// PostInc increments a in place and returns the value it held before.
func (a *IPv4addr) PostInc() (IPv4addr, error) {
	prev := *a
	_, err := a.Inc()
	return prev, err
}

// Dec decrements a in place and returns the new value.
// On underflow a is left unchanged.
func (a *IPv4addr) Dec() (IPv4addr, error) {
	next, err := a.Sub(1)
	if err != nil {
		return *a, err
	}
	*a = next
	return next, nil
}

// PostDec decrements a in place and returns the value it held before.
func (a *IPv4addr) PostDec() (IPv4addr, error) {
	prev := *a
	_, err := a.Dec()
	return prev, err
}

func (a IPv4addr) Not() IPv4addr {
	for i := range a {
		a[i] = ^a[i]
	}
	return a
}

func (a IPv4addr) And(b IPv4addr) IPv4addr {
	for i := range a {
		a[i] &= b[i]
	}
	return a
}

func (a IPv4addr) Or(b IPv4addr) IPv4addr {
	for i := range a {
		a[i] |= b[i]
	}
	return a
}

func (a IPv4addr) Xor(b IPv4addr) IPv4addr {
	for i := range a {
		a[i] ^= b[i]
	}
	return a
}

// IsValidNetmask reports whether a is a contiguous run of leading ones.
// The empty mask and the /31 and /32 masks are rejected since they leave
// no room for hosts.
func (a IPv4addr) IsValidNetmask() bool {
	m := a.Uint32()
	if m == 0 || m&0xff >= 254 {
		return false
	}
	inv := ^m
	return (inv+1)&inv == 0
}

// NetAddress returns the network address of host under netmask.
// The mask is not validated.
func NetAddress(host, netmask IPv4addr) IPv4addr {
	return host.And(netmask)
}

// BroadcastAddr returns the broadcast address of host under netmask.
// The mask is not validated.
func BroadcastAddr(host, netmask IPv4addr) IPv4addr {
	return host.Or(netmask.Not())
}
