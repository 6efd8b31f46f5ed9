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
	"errors"
	"time"

	"github.com/ep4eg/goarp"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	envutil "github.com/projectdiscovery/utils/env"
)

var (
	DefaultInterface = envutil.GetEnvOrDefault("GOARP_INTERFACE", "eth0")
	DefaultVendorDB  = envutil.GetEnvOrDefault("GOARP_VENDOR_DB", "")
)

// Options contains the configuration options of the goarp command.
type Options struct {
	Interface string
	Timeout   time.Duration
	Filter    bool
	Promisc   bool
	VendorDB  string

	Resolve string
	Scan    bool
	List    bool

	CacheGet string
	CacheAdd string
	CacheDel string
	HWaddr   string

	Verbose bool
	Debug   bool
	Silent  bool
	NoColor bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`goarp resolves IPv4 addresses to hardware addresses by speaking ARP on a local segment`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&options.Interface, "interface", "i", DefaultInterface, "network interface to send ARP requests through"),
		flagSet.DurationVarP(&options.Timeout, "timeout", "t", goarp.DefaultTimeout, "time to wait for each ARP reply (0 waits forever)"),
		flagSet.BoolVar(&options.Filter, "filter", false, "attach a socket filter dropping non Ethernet/IPv4 ARP frames"),
		flagSet.BoolVar(&options.Promisc, "promisc", false, "keep the interface in promiscuous mode while resolving"),
		flagSet.StringVarP(&options.VendorDB, "vendor-db", "vdb", DefaultVendorDB, "vendor database (SQLite vendors.db or OUI text file) used to name hardware vendors"),
	)

	flagSet.CreateGroup("mode", "Mode",
		flagSet.StringVarP(&options.Resolve, "resolve", "r", "", "resolve a single IPv4 address"),
		flagSet.BoolVarP(&options.Scan, "scan", "s", false, "resolve every host address of the interface network"),
		flagSet.BoolVarP(&options.List, "list", "l", false, "list network interfaces and their addresses"),
	)

	flagSet.CreateGroup("cache", "System ARP cache",
		flagSet.StringVarP(&options.CacheGet, "cache-get", "cg", "", "look up an IPv4 address in the system ARP cache"),
		flagSet.StringVarP(&options.CacheAdd, "cache-add", "ca", "", "add a permanent system ARP cache entry for an IPv4 address (needs -hw)"),
		flagSet.StringVarP(&options.CacheDel, "cache-del", "cd", "", "delete the system ARP cache entry of an IPv4 address"),
		flagSet.StringVar(&options.HWaddr, "hw", "", "hardware address of the entry added with -cache-add"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Debug, "debug", false, "show debug output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only results"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	options.configureOutput()

	if err := options.validateOptions(); err != nil {
		gologger.Fatal().Msgf("Program exiting: %s\n", err)
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.Debug {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelDebug)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}

func (options *Options) modes() int {
	n := 0
	for _, set := range []bool{
		options.Resolve != "",
		options.Scan,
		options.List,
		options.CacheGet != "",
		options.CacheAdd != "",
		options.CacheDel != "",
	} {
		if set {
			n++
		}
	}
	return n
}

func (options *Options) validateOptions() error {
	switch options.modes() {
	case 0:
		return errors.New("no mode given, use one of -resolve, -scan, -list, -cache-get, -cache-add or -cache-del")
	case 1:
	default:
		return errors.New("only one mode can be given at a time")
	}
	if options.Timeout < 0 {
		return errors.New("timeout can't be negative")
	}
	if !options.List && options.Interface == "" {
		return errors.New("no interface given")
	}
	if options.CacheAdd != "" && options.HWaddr == "" {
		return errors.New("-cache-add needs a hardware address (-hw)")
	}
	return nil
}
