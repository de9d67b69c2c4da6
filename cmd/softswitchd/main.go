/*
Licensed to the Apache Software Foundation (ASF) under one
or more contributor license agreements.  See the NOTICE file
distributed with this work for additional information
regarding copyright ownership.  The ASF licenses this file
to you under the Apache License, Version 2.0 (the
"License"); you may not use this file except in compliance
with the License.  You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing,
software distributed under the License is distributed on an
"AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
KIND, either express or implied.  See the License for the
specific language governing permissions and limitations
under the License.
*/

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/klog"

	"github.com/k-vswitch/softswitch/bufferpool"
	"github.com/k-vswitch/softswitch/config"
	"github.com/k-vswitch/softswitch/metrics"
	"github.com/k-vswitch/softswitch/translation"
)

func main() {
	klog.InitFlags(flag.CommandLine)

	cmd, err := newRootCommand()
	if err != nil {
		klog.Errorf("error setting up flags: %v", err)
		os.Exit(1)
	}

	if err := cmd.Execute(); err != nil {
		klog.Errorf("softswitchd failed: %v", err)
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

func newRootCommand() (*cobra.Command, error) {
	v := viper.New()
	config.SetDefaults(v)

	var (
		cfgFile string
		cfg     *config.Config
	)

	cmd := &cobra.Command{
		Use:           "softswitchd",
		Short:         "OpenFlow soft switch data-plane daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.Load(v, cfgFile)
			return err
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(cfg)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	cmd.Flags().AddGoFlagSet(flag.CommandLine)
	if err := config.AddFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}

	return cmd, nil
}

func run(cfg *config.Config) error {
	klog.Info("starting softswitchd")

	reg := metrics.NewRegistry()
	switchMetrics := metrics.NewSwitch(reg)

	pool := bufferpool.New(cfg.PoolConfig(),
		bufferpool.WithMemory(cfg.PoolMemory()),
		bufferpool.WithMetrics(bufferpool.NewMetrics(reg)))
	pool.Init()
	defer func() {
		if err := pool.Destroy(); err != nil {
			klog.Errorf("error destroying buffer pool: %v", err)
		}
	}()

	tr, err := translation.New(cfg.Version())
	if err != nil {
		return err
	}
	klog.Infof("speaking %s", tr)

	if _, err := installTables(tr, cfg.OpenFlow, switchMetrics); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopCh := ctx.Done()

	if err := setupPorts(cfg.Ports, switchMetrics, stopCh); err != nil {
		return err
	}

	if cfg.Metrics.Address != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Address, reg); err != nil {
				klog.Errorf("metrics endpoint stopped: %v", err)
				cancel()
			}
		}()
	}

	if cfg.Stats.Interval > 0 {
		go wait.Until(func() {
			s := pool.Stats()
			klog.Infof("buffer pool: capacity=%d free=%d in_use=%d unavailable=%d",
				s.Capacity, s.Free, s.InUse, s.Unavailable)
		}, cfg.Stats.Interval, stopCh)
	}

	term := make(chan os.Signal, 1)
	signal.Notify(term, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-term:
		klog.Infof("received %s, shutting down", sig)
	case <-stopCh:
	}

	return nil
}
