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
	"encoding/binary"
	"errors"
	"time"

	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"
)

// rawConn is an AF_PACKET datagram socket; the kernel strips and builds the
// Ethernet header, so reads and writes carry bare ARP frames.
type rawConn struct {
	fd int
}

func openRawConn() (linkConn, error) {
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, int(htons(unix.ETH_P_ARP)))
	if err != nil {
		return nil, newSysError("socket", "AF_PACKET", err)
	}
	return &rawConn{fd: fd}, nil
}

func (c *rawConn) setTimeout(d time.Duration) error {
	// Anything below a microsecond would read as "no timeout".
	if d > 0 && d < time.Microsecond {
		d = time.Microsecond
	}
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if err := unix.SetsockoptTimeval(c.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return newSysError("setsockopt", "SO_RCVTIMEO", err)
	}
	return nil
}

func (c *rawConn) bind(ifindex int, hw HWaddr) error {
	if err := unix.Bind(c.fd, linklayerAddr(ifindex, hw)); err != nil {
		return newSysError("bind", hw.String(), err)
	}
	return nil
}

func (c *rawConn) sendTo(b []byte, dst HWaddr, ifindex int) (int, error) {
	if err := unix.Sendto(c.fd, b, 0, linklayerAddr(ifindex, dst)); err != nil {
		return 0, newSysError("sendto", dst.String(), err)
	}
	return len(b), nil
}

func (c *rawConn) recvFrom(b []byte) (int, HWaddr, error) {
	var sender HWaddr
	n, from, err := unix.Recvfrom(c.fd, b, 0)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
			return 0, sender, errRecvTimeout
		}
		return 0, sender, newSysError("recvfrom", "", err)
	}
	if ll, ok := from.(*unix.SockaddrLinklayer); ok {
		copy(sender[:], ll.Addr[:HWaddrLen])
	}
	return n, sender, nil
}

func (c *rawConn) attachFilter(prog []bpf.RawInstruction) error {
	filter := make([]unix.SockFilter, len(prog))
	for i, ins := range prog {
		filter[i] = unix.SockFilter{Code: ins.Op, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	fprog := unix.SockFprog{
		Len:    uint16(len(filter)),
		Filter: &filter[0],
	}
	if err := unix.SetsockoptSockFprog(c.fd, unix.SOL_SOCKET, unix.SO_ATTACH_FILTER, &fprog); err != nil {
		return newSysError("setsockopt", "SO_ATTACH_FILTER", err)
	}
	return nil
}

func (c *rawConn) close() error {
	if err := unix.Close(c.fd); err != nil {
		return newSysError("close", "", err)
	}
	c.fd = -1
	return nil
}

func linklayerAddr(ifindex int, hw HWaddr) *unix.SockaddrLinklayer {
	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ARP),
		Ifindex:  ifindex,
		Halen:    HWaddrLen,
	}
	copy(sa.Addr[:], hw[:])
	return sa
}

// htons converts i to network byte order; link-layer sockaddrs and the
// socket protocol argument expect it that way.
func htons(i uint16) uint16 {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], i)
	return binary.NativeEndian.Uint16(b[:])
}
