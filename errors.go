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
)

var (
	ErrInvalidFormat    = errors.New("invalid format")
	ErrOverflow         = errors.New("IPv4 overflow")
	ErrUnderflow        = errors.New("IPv4 underflow")
	ErrSendFailed       = errors.New("ARP frame could not be sent")
	ErrClosed           = errors.New("use of closed ARP channel")
	ErrNoIPv4addr       = errors.New("no IPv4 address assigned to the interface")
	ErrInvalidInterface = errors.New("invalid network interface")
	ErrNoEntry          = errors.New("not found in the ARP cache")
	ErrUnsupported      = errors.New("raw ARP sockets are not supported on this platform")

	errShortFrame  = errors.New("ARP frame is too short")
	errRecvTimeout = errors.New("receive timed out")
)

// SysError records an operating system failure together with the operation
// and the resource (interface name, address) it was performed on.
type SysError struct {
	Op   string
	Name string
	Err  error
}

func newSysError(op, name string, err error) *SysError {
	return &SysError{Op: op, Name: name, Err: err}
}

func (e *SysError) Error() string {
	if e.Name == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *SysError) Unwrap() error { return e.Err }
