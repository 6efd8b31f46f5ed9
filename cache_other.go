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

//go:build !linux

package goarp

func (SystemCache) Add(ifc Interface, ip IPv4addr, hw HWaddr) error { return ErrUnsupported }

func (SystemCache) Delete(ifc Interface, ip IPv4addr) error { return ErrUnsupported }

func (SystemCache) Lookup(ifc Interface, ip IPv4addr) (HWaddr, error) {
	return HWaddr{}, ErrUnsupported
}
