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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ep4eg/goarp/internal/runner"
	"github.com/projectdiscovery/gologger"
)

func main() {
	options := runner.ParseOptions()
	goarpRunner, err := runner.NewRunner(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}
	defer goarpRunner.Close()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup close handler
	go func() {
		<-c
		gologger.Info().Msgf("Ctrl+C pressed in Terminal, Exiting...")
		cancel()
		// Without a receive timeout a pending resolution never returns.
		if options.Timeout > 0 {
			<-c
		}
		goarpRunner.RestoreInterface()
		os.Exit(1)
	}()

	if err := goarpRunner.Run(ctx); err != nil {
		goarpRunner.Close()
		gologger.Fatal().Msgf("Could not run goarp: %s\n", err)
	}
}
