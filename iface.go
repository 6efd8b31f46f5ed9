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
	"net"
	"strconv"
)

// Interface is the network device a Channel sends through.
type Interface interface {
	Name() string
	Index() int
	// IPv4addr returns the primary IPv4 address of the device. It fails with
	// ErrNoIPv4addr when none is assigned.
	IPv4addr() (IPv4addr, error)
	Netmask() (IPv4addr, error)
	HWaddr() HWaddr
	IsBound() bool
}

// NetInterface is an Interface backed by a network device of the host.
type NetInterface struct {
	ifi *net.Interface
}

// InterfaceByName looks up the device called name.
func InterfaceByName(name string) (*NetInterface, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return nil, newSysError("interface", name, err)
	}
	return &NetInterface{ifi: ifi}, nil
}

// InterfaceByIndex looks up the device with the given index.
func InterfaceByIndex(index int) (*NetInterface, error) {
	ifi, err := net.InterfaceByIndex(index)
	if err != nil {
		return nil, newSysError("interface", "index "+strconv.Itoa(index), err)
	}
	return &NetInterface{ifi: ifi}, nil
}

// Interfaces returns every device of the host, ordered by index.
func Interfaces() ([]*NetInterface, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return nil, newSysError("interfaces", "", err)
	}
	res := make([]*NetInterface, 0, len(ifs))
	for i := range ifs {
		res = append(res, &NetInterface{ifi: &ifs[i]})
	}
	return res, nil
}

func (n *NetInterface) Name() string {
	if n.ifi == nil {
		return ""
	}
	return n.ifi.Name
}

func (n *NetInterface) Index() int {
	if n.ifi == nil {
		return 0
	}
	return n.ifi.Index
}

// IsBound reports whether n refers to an existing device.
func (n *NetInterface) IsBound() bool {
	return n.ifi != nil && n.ifi.Index > 0
}

// HWaddr returns the hardware address of the device. Devices without one,
// such as the loopback, report the null address.
func (n *NetInterface) HWaddr() HWaddr {
	if n.ifi == nil {
		return HWaddr{}
	}
	hw, err := HWaddrFromBytes(n.ifi.HardwareAddr)
	if err != nil {
		return HWaddr{}
	}
	return hw
}

func (n *NetInterface) IPv4addr() (IPv4addr, error) {
	ipnet, err := n.primaryIPv4net()
	if err != nil {
		return IPv4addr{}, err
	}
	return IPv4addrFromIP(ipnet.IP)
}

func (n *NetInterface) Netmask() (IPv4addr, error) {
	ipnet, err := n.primaryIPv4net()
	if err != nil {
		return IPv4addr{}, err
	}
	var mask IPv4addr
	if len(ipnet.Mask) < IPv4len {
		return mask, newSysError("netmask", n.Name(), ErrNoIPv4addr)
	}
	copy(mask[:], ipnet.Mask[len(ipnet.Mask)-IPv4len:])
	return mask, nil
}

func (n *NetInterface) String() string {
	return n.Name()
}

// primaryIPv4net returns the first IPv4 network assigned to the device.
func (n *NetInterface) primaryIPv4net() (*net.IPNet, error) {
	if !n.IsBound() {
		return nil, ErrInvalidInterface
	}
	addrs, err := n.ifi.Addrs()
	if err != nil {
		return nil, newSysError("addresses", n.Name(), err)
	}
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ipnet.IP.To4() != nil {
			return ipnet, nil
		}
	}
	return nil, newSysError("addresses", n.Name(), ErrNoIPv4addr)
}
