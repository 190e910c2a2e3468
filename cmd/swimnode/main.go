/*
 * Copyright 2018 De-labtory
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command swimnode runs a single swim cluster member: it binds a UDP
// socket, joins an existing cluster (if any seed addresses are given),
// and drives the failure detector until the process is stopped.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/it-chain/iLogger"
	"github.com/urfave/cli"

	"github.com/swimkit/swim"
	"github.com/swimkit/swim/eventloop"
	"github.com/swimkit/swim/idgen"
	"github.com/swimkit/swim/transport"
)

func main() {
	app := cli.NewApp()
	app.Name = "swimnode"
	app.Usage = "run a SWIM cluster membership node"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "id", Usage: "stable, cluster-unique node id (generated if omitted)"},
		cli.StringFlag{Name: "bind", Value: "0.0.0.0:7946", Usage: "UDP address to bind"},
		cli.StringSliceFlag{Name: "join", Usage: "id=address of an existing member to join (repeatable)"},
		cli.DurationFlag{Name: "ping-interval", Value: 500 * time.Millisecond, Usage: "direct ping timeout"},
		cli.DurationFlag{Name: "protocol-period", Value: 1 * time.Second, Usage: "indirect ping / suspect timeout"},
		cli.DurationFlag{Name: "suspicion-period", Value: 5 * time.Second, Usage: "initial suspect-to-failed timeout"},
		cli.IntFlag{Name: "k", Value: 3, Usage: "indirect ping-req fanout"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		iLogger.Error(nil, err.Error())
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	id := c.String("id")
	if id == "" {
		id = idgen.New()
	}

	cfg := swim.Config{
		PingInterval:        c.Duration("ping-interval"),
		ProtocolPeriod:      c.Duration("protocol-period"),
		SuspicionPeriod:     c.Duration("suspicion-period"),
		PingReqSubgroupSize: c.Int("k"),
		BindAddress:         c.String("bind"),
	}

	endpoint, err := transport.NewMessageEndpoint(transport.MessageEndpointConfig{BindAddress: cfg.BindAddress})
	if err != nil {
		return fmt.Errorf("bind %s: %w", cfg.BindAddress, err)
	}
	defer endpoint.Close()
	cfg.BindAddress = endpoint.LocalAddr()

	core, err := swim.New(id, cfg, swim.NewSystemClock(), swim.NewSource(time.Now().UnixNano()))
	if err != nil {
		return err
	}

	iLogger.Info(nil, fmt.Sprintf("swimnode: %s listening on %s", core.ID(), core.Address()))

	loop := eventloop.New(core, endpoint, cfg.ProtocolPeriod)

	for _, seed := range c.StringSlice("join") {
		parts := strings.SplitN(seed, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid --join %q, expected id=address", seed)
		}
		if err := loop.Join(parts[0], parts[1]); err != nil {
			return fmt.Errorf("join %s: %w", seed, err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return loop.Run(ctx)
}
