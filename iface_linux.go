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
	"golang.org/x/sys/unix"
)

// IsPromisc reports whether the device runs in promiscuous mode.
func (n *NetInterface) IsPromisc() (bool, error) {
	flags, err := n.ifflags(unix.SIOCGIFFLAGS, nil)
	if err != nil {
		return false, err
	}
	return flags&unix.IFF_PROMISC != 0, nil
}

// SetPromisc turns promiscuous mode on or off. It needs CAP_NET_ADMIN.
func (n *NetInterface) SetPromisc(on bool) error {
	_, err := n.ifflags(unix.SIOCSIFFLAGS, func(flags uint16) uint16 {
		if on {
			return flags | unix.IFF_PROMISC
		}
		return flags &^ unix.IFF_PROMISC
	})
	return err
}

// ifflags reads the device flags and, when update is set, writes back the
// value it returns using req.
func (n *NetInterface) ifflags(req uint, update func(uint16) uint16) (uint16, error) {
	if !n.IsBound() {
		return 0, ErrInvalidInterface
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return 0, newSysError("socket", "", err)
	}
	defer unix.Close(fd)

	ifr, err := unix.NewIfreq(n.Name())
	if err != nil {
		return 0, newSysError("ifreq", n.Name(), err)
	}
	if err := unix.IoctlIfreq(fd, unix.SIOCGIFFLAGS, ifr); err != nil {
		return 0, newSysError("SIOCGIFFLAGS", n.Name(), err)
	}
	flags := ifr.Uint16()
	if update == nil {
		return flags, nil
	}
	flags = update(flags)
	ifr.SetUint16(flags)
	if err := unix.IoctlIfreq(fd, req, ifr); err != nil {
		return 0, newSysError("SIOCSIFFLAGS", n.Name(), err)
	}
	return flags, nil
}
