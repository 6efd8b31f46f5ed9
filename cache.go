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

// Cache is the ARP table kept by the operating system.
//
// Lookup fails with ErrInvalidInterface when ifc does not refer to a device,
// with ErrNoEntry when ip has no entry, and with a *SysError otherwise.
type Cache interface {
	// Add inserts a permanent entry binding ip to hw on ifc.
	Add(ifc Interface, ip IPv4addr, hw HWaddr) error
	Delete(ifc Interface, ip IPv4addr) error
	Lookup(ifc Interface, ip IPv4addr) (HWaddr, error)
}

// SystemCache is the kernel ARP table. Changing it needs CAP_NET_ADMIN.
type SystemCache struct{}

var _ Cache = SystemCache{}
