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
	"strconv"
)

// FrameLen is the size of an Ethernet/IPv4 ARP frame on the wire.
const FrameLen int = 28

// ProtoIPv4 is the protocol type of IPv4 in an ARP frame (the IPv4 EtherType).
const ProtoIPv4 uint16 = 0x0800

// Operation is the ARP opcode.
type Operation uint16

const (
	ArpRequest Operation = iota + 1
	ArpReply
)

func (op Operation) String() string {
	switch op {
	case ArpRequest:
		return "request"
	case ArpReply:
		return "reply"
	}
	return "Operation(" + strconv.Itoa(int(op)) + ")"
}

// HWtype is the ARP hardware type field.
type HWtype uint16

const (
	HWtypeNetROM     HWtype = 0  // from KA9Q: NET/ROM pseudo
	HWtypeEthernet   HWtype = 1  // Ethernet 10/100Mbps
	HWtypeExpEther   HWtype = 2  // experimental Ethernet
	HWtypeAX25       HWtype = 3  // AX.25 level 2
	HWtypePronet     HWtype = 4  // PROnet token ring
	HWtypeChaos      HWtype = 5  // Chaosnet
	HWtypeIEEE802    HWtype = 6  // IEEE 802.2 Ethernet/TR/TB
	HWtypeArcnet     HWtype = 7  // ARCnet
	HWtypeAppletalk  HWtype = 8  // APPLEtalk
	HWtypeDLCI       HWtype = 15 // Frame Relay DLCI
	HWtypeATM        HWtype = 19 // ATM
	HWtypeMetricom   HWtype = 23 // Metricom STRIP
	HWtypeIEEE1394   HWtype = 24 // IEEE 1394 IPv4, RFC 2734
	HWtypeEUI64      HWtype = 27 // EUI-64
	HWtypeInfiniband HWtype = 32 // InfiniBand
)

var hwtypeNames = map[HWtype]string{
	HWtypeNetROM:     "netrom",
	HWtypeEthernet:   "ether",
	HWtypeExpEther:   "eether",
	HWtypeAX25:       "ax25",
	HWtypePronet:     "pronet",
	HWtypeChaos:      "chaos",
	HWtypeIEEE802:    "ieee802",
	HWtypeArcnet:     "arcnet",
	HWtypeAppletalk:  "appletalk",
	HWtypeDLCI:       "dlci",
	HWtypeATM:        "atm",
	HWtypeMetricom:   "metricom",
	HWtypeIEEE1394:   "ieee1394",
	HWtypeEUI64:      "eui64",
	HWtypeInfiniband: "infiniband",
}

func (t HWtype) String() string {
	if name, ok := hwtypeNames[t]; ok {
		return name
	}
	return "HWtype(" + strconv.Itoa(int(t)) + ")"
}

// Frame is an ARP frame for Ethernet hardware and IPv4 protocol addresses.
// Fields hold host order values; Marshal and Unmarshal take care of the
// network byte order of the wire format.
type Frame struct {
	HWtype   HWtype
	Protocol uint16
	HWlen    uint8
	ProtoLen uint8
	Op       Operation
	SenderHW HWaddr
	SenderIP IPv4addr
	TargetHW HWaddr
	TargetIP IPv4addr
}

// NewFrame returns an Ethernet/IPv4 frame for op with every address zeroed.
func NewFrame(op Operation) *Frame {
	return &Frame{
		HWtype:   HWtypeEthernet,
		Protocol: ProtoIPv4,
		HWlen:    HWaddrLen,
		ProtoLen: IPv4len,
		Op:       op,
	}
}

// Marshal converts Frame struct into its binary representation
func (f *Frame) Marshal() []byte {
	b := make([]byte, FrameLen)
	f.MarshalTo(b)
	return b
}

// MarshalTo writes the binary representation of f into b, which must hold at
// least FrameLen bytes. It returns the number of bytes written.
func (f *Frame) MarshalTo(b []byte) (int, error) {
	if len(b) < FrameLen {
		return 0, errShortFrame
	}
	binary.BigEndian.PutUint16(b[0:2], uint16(f.HWtype))
	binary.BigEndian.PutUint16(b[2:4], f.Protocol)
	b[4] = f.HWlen
	b[5] = f.ProtoLen
	binary.BigEndian.PutUint16(b[6:8], uint16(f.Op))
	copy(b[8:14], f.SenderHW[:])
	copy(b[14:18], f.SenderIP[:])
	copy(b[18:24], f.TargetHW[:])
	copy(b[24:28], f.TargetIP[:])
	return FrameLen, nil
}

// Unmarshal decodes the first FrameLen bytes of b into f.
func (f *Frame) Unmarshal(b []byte) error {
	if len(b) < FrameLen {
		return errShortFrame
	}
	f.HWtype = HWtype(binary.BigEndian.Uint16(b[0:2]))
	f.Protocol = binary.BigEndian.Uint16(b[2:4])
	f.HWlen = b[4]
	f.ProtoLen = b[5]
	f.Op = Operation(binary.BigEndian.Uint16(b[6:8]))
	copy(f.SenderHW[:], b[8:14])
	copy(f.SenderIP[:], b[14:18])
	copy(f.TargetHW[:], b[18:24])
	copy(f.TargetIP[:], b[24:28])
	return nil
}
