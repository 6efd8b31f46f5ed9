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

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ep4eg/goarp"
	"github.com/projectdiscovery/gologger"
)

// resolver is the part of *goarp.Channel the ARP modes use.
type resolver interface {
	Resolve(target goarp.IPv4addr, ifc goarp.Interface) (goarp.HWaddr, bool, error)
	Close() error
}

// promiscuous is an interface whose promiscuous mode can be switched off again.
type promiscuous interface {
	Name() string
	SetPromisc(on bool) error
}

// Runner contains the internal logic of the program
type Runner struct {
	options *Options
	nic     goarp.Interface
	channel resolver
	cache   goarp.Cache
	vendors goarp.VendorLookup

	// promisc is set when promiscuous mode was turned on by us and must be undone.
	promisc     promiscuous
	restoreOnce sync.Once
	closeOnce   sync.Once
}

// NewRunner opens the interface and, for the modes that speak ARP, the raw channel.
func NewRunner(options *Options) (*Runner, error) {
	r := &Runner{
		options: options,
		cache:   goarp.SystemCache{},
		vendors: goarp.NoVendors{},
	}
	if options.VendorDB != "" {
		vendors, err := goarp.OpenVendors(options.VendorDB)
		if err != nil {
			return nil, fmt.Errorf("could not load vendor database: %w", err)
		}
		r.vendors = vendors
	}
	if options.List {
		return r, nil
	}

	nic, err := goarp.InterfaceByName(options.Interface)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.nic = nic

	if options.Resolve == "" && !options.Scan {
		return r, nil
	}
	channel, err := goarp.Open(options.Timeout)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("could not open ARP channel: %w", err)
	}
	if options.Filter {
		if err := channel.AttachFilter(); err != nil {
			_ = channel.Close()
			r.Close()
			return nil, fmt.Errorf("could not attach ARP filter: %w", err)
		}
	}
	if err := channel.Bind(nic); err != nil {
		_ = channel.Close()
		r.Close()
		return nil, fmt.Errorf("could not bind ARP channel to %s: %w", nic.Name(), err)
	}
	r.channel = channel

	if options.Promisc {
		on, err := nic.IsPromisc()
		if err != nil {
			r.Close()
			return nil, err
		}
		if !on {
			if err := nic.SetPromisc(true); err != nil {
				r.Close()
				return nil, fmt.Errorf("could not enable promiscuous mode on %s: %w", nic.Name(), err)
			}
			r.promisc = nic
		}
	}
	return r, nil
}

// Run the instance
func (r *Runner) Run(ctx context.Context) error {
	switch {
	case r.options.List:
		return r.listInterfaces()
	case r.options.Resolve != "":
		return r.resolve()
	case r.options.Scan:
		_, err := r.scan(ctx)
		return err
	case r.options.CacheGet != "":
		return r.cacheGet()
	case r.options.CacheAdd != "":
		return r.cacheAdd()
	case r.options.CacheDel != "":
		return r.cacheDel()
	}
	return errors.New("nothing to do")
}

// RestoreInterface turns promiscuous mode back off if the runner turned it on.
// It is safe to call from a signal handler while Run is in progress.
func (r *Runner) RestoreInterface() {
	r.restoreOnce.Do(func() {
		if r.promisc == nil {
			return
		}
		if err := r.promisc.SetPromisc(false); err != nil {
			gologger.Warning().Msgf("could not disable promiscuous mode on %s: %s", r.promisc.Name(), err)
		}
	})
}

// Close restores the interface and releases the ARP channel and vendor
// database. Only the first call has an effect.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		r.RestoreInterface()
		if r.channel != nil {
			if err := r.channel.Close(); err != nil {
				gologger.Warning().Msgf("could not close ARP channel: %s", err)
			}
		}
		if closer, ok := r.vendors.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				gologger.Warning().Msgf("could not close vendor database: %s", err)
			}
		}
	})
}

func (r *Runner) resolve() error {
	host, err := goarp.ParseIPv4addr(r.options.Resolve)
	if err != nil {
		return err
	}
	hw, ok, err := r.channel.Resolve(host, r.nic)
	if err != nil {
		return err
	}
	if !ok {
		gologger.Warning().Msgf("Couldn't resolve %s", host)
		return nil
	}
	gologger.Silent().Msgf("IP:\t%s", host)
	gologger.Silent().Msgf("Hw:\t%s", hw)
	if vendor := r.vendors.Vendor(hw); vendor != goarp.UnknownVendor {
		gologger.Silent().Msgf("Vendor:\t%s", vendor)
	}
	return nil
}

// scan resolves every address strictly between the network and broadcast
// addresses of the interface and returns how many hosts answered.
func (r *Runner) scan(ctx context.Context) (int, error) {
	ip, err := r.nic.IPv4addr()
	if err != nil {
		return 0, err
	}
	mask, err := r.nic.Netmask()
	if err != nil {
		return 0, err
	}
	if !mask.IsValidNetmask() {
		return 0, fmt.Errorf("can't scan %s with netmask %s", r.nic.Name(), mask)
	}

	request, err := goarp.NetAddress(ip, mask).Add(1)
	if err != nil {
		return 0, err
	}
	bcast := goarp.BroadcastAddr(ip, mask)
	gologger.Info().Msgf("Scanning %s/%s on %s", goarp.NetAddress(ip, mask), mask, r.nic.Name())

	hostsUp := 0
	for request.Less(bcast) {
		select {
		case <-ctx.Done():
			gologger.Info().Msgf("%d hosts up (scan interrupted at %s)", hostsUp, request)
			return hostsUp, nil
		default:
		}

		gologger.Verbose().Msgf("Resolving %s", request)
		hw, ok, err := r.channel.Resolve(request, r.nic)
		if err != nil {
			return hostsUp, err
		}
		if ok {
			hostsUp++
			gologger.Silent().Msgf("%s is up\t%s\t%s", request, hw, r.vendors.Vendor(hw))
		}
		if _, err := request.Inc(); err != nil {
			return hostsUp, err
		}
	}
	gologger.Info().Msgf("%d hosts up", hostsUp)
	return hostsUp, nil
}

func (r *Runner) listInterfaces() error {
	nics, err := goarp.Interfaces()
	if err != nil {
		return err
	}
	for _, nic := range nics {
		gologger.Silent().Msgf("%d) %s", nic.Index(), nic.Name())
		gologger.Silent().Msgf("   Hw Address:\t%s", nic.HWaddr())
		if on, err := nic.IsPromisc(); err == nil && on {
			gologger.Silent().Msgf("   Promiscuous mode")
		}

		ip, err := nic.IPv4addr()
		if err != nil {
			gologger.Verbose().Msgf("%s: %s", nic.Name(), err)
			continue
		}
		mask, err := nic.Netmask()
		if err != nil {
			gologger.Verbose().Msgf("%s: %s", nic.Name(), err)
			continue
		}
		gologger.Silent().Msgf("   Network:\t%s", goarp.NetAddress(ip, mask))
		gologger.Silent().Msgf("   Netmask:\t%s", mask)
		gologger.Silent().Msgf("   IP Address:\t%s", ip)
		gologger.Silent().Msgf("   Broadcast:\t%s", goarp.BroadcastAddr(ip, mask))
	}
	return nil
}

func (r *Runner) cacheGet() error {
	ip, err := goarp.ParseIPv4addr(r.options.CacheGet)
	if err != nil {
		return err
	}
	hw, err := r.cache.Lookup(r.nic, ip)
	if errors.Is(err, goarp.ErrNoEntry) {
		gologger.Warning().Msgf("%s", err)
		return nil
	}
	if err != nil {
		return err
	}
	gologger.Silent().Msgf("%s\t%s\t%s", ip, hw, r.vendors.Vendor(hw))
	return nil
}

func (r *Runner) cacheAdd() error {
	ip, err := goarp.ParseIPv4addr(r.options.CacheAdd)
	if err != nil {
		return err
	}
	hw, err := goarp.ParseHWaddr(r.options.HWaddr)
	if err != nil {
		return err
	}
	if err := r.cache.Add(r.nic, ip, hw); err != nil {
		return err
	}
	gologger.Info().Msgf("Added %s at %s on %s", ip, hw, r.nic.Name())
	return nil
}

func (r *Runner) cacheDel() error {
	ip, err := goarp.ParseIPv4addr(r.options.CacheDel)
	if err != nil {
		return err
	}
	if err := r.cache.Delete(r.nic, ip); err != nil {
		return err
	}
	gologger.Info().Msgf("Deleted %s from %s", ip, r.nic.Name())
	return nil
}
