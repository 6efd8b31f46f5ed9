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
	"golang.org/x/net/bpf"
)

// arpFilter accepts ARP frames for Ethernet hardware and IPv4 protocol
// addresses and drops everything else. Offsets are relative to the start
// of the ARP header, which is where datagram packet sockets start.
var arpFilter = []bpf.Instruction{
	bpf.LoadAbsolute{Off: 0, Size: 2},
	bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: uint32(HWtypeEthernet), SkipTrue: 7},
	bpf.LoadAbsolute{Off: 2, Size: 2},
	bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: uint32(ProtoIPv4), SkipTrue: 5},
	bpf.LoadAbsolute{Off: 4, Size: 1},
	bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: HWaddrLen, SkipTrue: 3},
	bpf.LoadAbsolute{Off: 5, Size: 1},
	bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: IPv4len, SkipTrue: 1},
	bpf.RetConstant{Val: uint32(FrameLen)},
	bpf.RetConstant{Val: 0},
}

func assembleARPFilter() ([]bpf.RawInstruction, error) {
	return bpf.Assemble(arpFilter)
}
