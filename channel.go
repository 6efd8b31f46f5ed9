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
	"time"

	"github.com/projectdiscovery/gologger"
	"golang.org/x/net/bpf"
)

// DefaultTimeout is how long a Channel waits for a frame unless told otherwise.
const DefaultTimeout = 100 * time.Millisecond

// linkConn is a link-layer datagram socket carrying ARP frames.
// recvFrom reports errRecvTimeout once the receive timeout expires.
type linkConn interface {
	setTimeout(d time.Duration) error
	bind(ifindex int, hw HWaddr) error
	sendTo(b []byte, dst HWaddr, ifindex int) (int, error)
	recvFrom(b []byte) (int, HWaddr, error)
	attachFilter(prog []bpf.RawInstruction) error
	close() error
}

// Channel sends and receives ARP frames through a raw link-layer socket.
// A Channel is the sole owner of its socket and must not be used from
// several goroutines at once.
type Channel struct {
	conn    linkConn
	timeout time.Duration
}

// Open opens a raw socket for ARP frames that waits at most timeout for each
// received frame; zero waits forever. It needs root or CAP_NET_RAW.
func Open(timeout time.Duration) (*Channel, error) {
	conn, err := openRawConn()
	if err != nil {
		return nil, err
	}
	return newChannel(conn, timeout)
}

func newChannel(conn linkConn, timeout time.Duration) (*Channel, error) {
	c := &Channel{conn: conn}
	if err := c.SetTimeout(timeout); err != nil {
		_ = conn.close()
		return nil, err
	}
	return c, nil
}

// Timeout returns the receive timeout in effect.
func (c *Channel) Timeout() time.Duration {
	return c.timeout
}

// SetTimeout changes the receive timeout. On failure the previous one stays in effect.
func (c *Channel) SetTimeout(d time.Duration) error {
	if c.conn == nil {
		return ErrClosed
	}
	if d < 0 {
		return fmt.Errorf("invalid receive timeout %v", d)
	}
	if err := c.conn.setTimeout(d); err != nil {
		return err
	}
	c.timeout = d
	return nil
}

// Bind restricts reception to frames arriving on ifc.
func (c *Channel) Bind(ifc Interface) error {
	if c.conn == nil {
		return ErrClosed
	}
	return c.conn.bind(ifc.Index(), ifc.HWaddr())
}

// AttachFilter installs a socket filter that lets through only ARP frames
// for Ethernet hardware and IPv4 protocol addresses.
func (c *Channel) AttachFilter() error {
	if c.conn == nil {
		return ErrClosed
	}
	prog, err := assembleARPFilter()
	if err != nil {
		return err
	}
	return c.conn.attachFilter(prog)
}

// Send transmits f to dst out of ifc. Transmission failures are reported
// wrapped in ErrSendFailed.
func (c *Channel) Send(f *Frame, dst HWaddr, ifc Interface) error {
	if c.conn == nil {
		return ErrClosed
	}
	n, err := c.conn.sendTo(f.Marshal(), dst, ifc.Index())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	if n != FrameLen {
		return fmt.Errorf("%w: short write of %d bytes", ErrSendFailed, n)
	}
	return nil
}

// Receive waits for one frame and decodes it into f. It returns the link-layer
// address the datagram came from, which may differ from f.SenderHW.
// ok is false when the timeout expired before anything arrived or the
// datagram was too short to hold a frame.
func (c *Channel) Receive(f *Frame) (sender HWaddr, ok bool, err error) {
	if c.conn == nil {
		return sender, false, ErrClosed
	}
	var buf [FrameLen]byte
	n, sender, err := c.conn.recvFrom(buf[:])
	if errors.Is(err, errRecvTimeout) {
		return HWaddr{}, false, nil
	}
	if err != nil {
		return HWaddr{}, false, err
	}
	if n < FrameLen {
		gologger.Debug().Msgf("dropping %d byte datagram from %s", n, sender)
		return sender, false, nil
	}
	if err := f.Unmarshal(buf[:n]); err != nil {
		return sender, false, err
	}
	return sender, true, nil
}

// Resolve asks for the hardware address of target on the segment ifc is
// attached to. It broadcasts a single request and inspects a single frame:
// ok is true only when that frame is a reply sent by target. Timeouts, send
// failures and unrelated frames yield ok == false and a nil error.
func (c *Channel) Resolve(target IPv4addr, ifc Interface) (hw HWaddr, ok bool, err error) {
	if c.conn == nil {
		return hw, false, ErrClosed
	}
	src, err := ifc.IPv4addr()
	if err != nil {
		return hw, false, err
	}

	req := NewFrame(ArpRequest)
	req.SenderHW = ifc.HWaddr()
	req.SenderIP = src
	req.TargetIP = target
	if err := c.Send(req, BcastHWaddr, ifc); err != nil {
		gologger.Debug().Msgf("who-has %s on %s: %s", target, ifc.Name(), err)
		return hw, false, nil
	}

	var reply Frame
	_, ok, err = c.Receive(&reply)
	switch {
	case err != nil:
		return hw, false, err
	case !ok:
		gologger.Debug().Msgf("who-has %s on %s: no reply", target, ifc.Name())
		return hw, false, nil
	}
	if reply.Op != ArpReply || reply.SenderIP != target {
		gologger.Debug().Msgf("who-has %s on %s: ignoring %s from %s", target, ifc.Name(), reply.Op, reply.SenderIP)
		return hw, false, nil
	}
	return reply.SenderHW, true, nil
}

// Move hands the socket over to a new Channel. c is left closed.
func (c *Channel) Move() *Channel {
	moved := &Channel{conn: c.conn, timeout: c.timeout}
	c.conn = nil
	return moved
}

// Close releases the socket. Closing a closed Channel is a no-op.
func (c *Channel) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.close()
	c.conn = nil
	return err
}
