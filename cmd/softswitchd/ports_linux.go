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
	"github.com/Kmotiko/gofc/ofprotocol/ofp13"
	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"k8s.io/klog"

	"github.com/k-vswitch/softswitch/config"
	"github.com/k-vswitch/softswitch/metrics"
	"github.com/k-vswitch/softswitch/ports"
)

// setupPorts describes the configured links and keeps their state current
// until stopCh is closed.
func setupPorts(portsCfg []config.Port, m *metrics.Switch, stopCh <-chan struct{}) error {
	if len(portsCfg) == 0 {
		klog.Warning("no ports configured")
		return nil
	}

	handle, err := netlink.NewHandle()
	if err != nil {
		return errors.Wrap(err, "error opening netlink handle")
	}
	defer handle.Delete()

	descs, err := ports.Discover(handle, portsCfg)
	if err != nil {
		return err
	}

	cache := ports.NewCache(descs)
	for _, desc := range cache.Ports() {
		klog.Infof("port %d: %s", desc.PortNo, desc.Name)
		m.SetPort(desc)
	}

	updates := make(chan netlink.LinkUpdate)
	if err := netlink.LinkSubscribe(updates, stopCh); err != nil {
		return errors.Wrap(err, "error subscribing to link updates")
	}

	go cache.Watch(updates, stopCh, func(desc ofp13.OfpPort) {
		klog.Infof("port %d (%s) changed: config=%#x state=%#x", desc.PortNo, desc.Name, desc.Config, desc.State)
		m.SetPort(desc)
	})

	return nil
}
