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
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// arp_flags of struct arpreq, see <net/if_arp.h>.
const (
	atfCom  = 0x02 // completed entry
	atfPerm = 0x04 // permanent entry
)

type rawSockaddr struct {
	family uint16
	data   [14]byte
}

// arpreq mirrors struct arpreq from <net/if_arp.h>.
type arpreq struct {
	pa    rawSockaddr
	ha    rawSockaddr
	flags int32
	mask  rawSockaddr
	dev   [unix.IFNAMSIZ]byte
}

func newArpreq(ifc Interface, ip IPv4addr) *arpreq {
	r := &arpreq{}
	r.pa.family = unix.AF_INET
	// sockaddr_in: two bytes of port, then the address.
	copy(r.pa.data[2:], ip[:])
	copy(r.dev[:unix.IFNAMSIZ-1], ifc.Name())
	return r
}

func (SystemCache) Add(ifc Interface, ip IPv4addr, hw HWaddr) error {
	if !ifc.IsBound() {
		return ErrInvalidInterface
	}
	r := newArpreq(ifc, ip)
	r.ha.family = unix.ARPHRD_ETHER
	copy(r.ha.data[:], hw[:])
	r.flags = atfCom | atfPerm
	if err := arpIoctl(unix.SIOCSARP, r); err != nil {
		return newSysError("SIOCSARP", ip.String(), err)
	}
	return nil
}

func (SystemCache) Delete(ifc Interface, ip IPv4addr) error {
	if !ifc.IsBound() {
		return ErrInvalidInterface
	}
	if err := arpIoctl(unix.SIOCDARP, newArpreq(ifc, ip)); err != nil {
		return newSysError("SIOCDARP", ip.String(), err)
	}
	return nil
}

func (SystemCache) Lookup(ifc Interface, ip IPv4addr) (HWaddr, error) {
	var hw HWaddr
	if !ifc.IsBound() {
		return hw, ErrInvalidInterface
	}
	r := newArpreq(ifc, ip)
	if err := arpIoctl(unix.SIOCGARP, r); err != nil {
		if errors.Is(err, unix.ENXIO) {
			return hw, fmt.Errorf("%s %w", ip, ErrNoEntry)
		}
		return hw, newSysError("SIOCGARP", ip.String(), err)
	}
	copy(hw[:], r.ha.data[:HWaddrLen])
	return hw, nil
}

func arpIoctl(req uintptr, r *arpreq) error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(r)))
	if errno != 0 {
		return errno
	}
	return nil
}
