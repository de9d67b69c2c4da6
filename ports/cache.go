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

package ports

import (
	"sort"
	"sync"

	"github.com/Kmotiko/gofc/ofprotocol/ofp13"
	"github.com/vishvananda/netlink"
	"k8s.io/klog"
)

// Cache keeps the port descriptions of the switch, kept current from link
// updates.
type Cache struct {
	sync.Mutex

	byNo   map[uint32]*ofp13.OfpPort
	byName map[string]*ofp13.OfpPort
}

func NewCache(descs []*ofp13.OfpPort) *Cache {
	c := &Cache{
		byNo:   make(map[uint32]*ofp13.OfpPort, len(descs)),
		byName: make(map[string]*ofp13.OfpPort, len(descs)),
	}

	for _, d := range descs {
		c.byNo[d.PortNo] = d
		c.byName[string(d.Name)] = d
	}

	return c
}

// Get returns a copy of the description of port no.
func (c *Cache) Get(no uint32) (ofp13.OfpPort, bool) {
	c.Lock()
	defer c.Unlock()

	d, ok := c.byNo[no]
	if !ok {
		return ofp13.OfpPort{}, false
	}
	return *d, true
}

// Ports returns copies of all descriptions ordered by port number.
func (c *Cache) Ports() []ofp13.OfpPort {
	c.Lock()
	defer c.Unlock()

	descs := make([]ofp13.OfpPort, 0, len(c.byNo))
	for _, d := range c.byNo {
		descs = append(descs, *d)
	}
	sort.Slice(descs, func(i, j int) bool { return descs[i].PortNo < descs[j].PortNo })

	return descs
}

// Update refreshes the port backed by the link with attributes attrs. It
// returns the new description and true when its config or state changed.
// Links that are not switch ports are ignored.
func (c *Cache) Update(attrs netlink.LinkAttrs) (ofp13.OfpPort, bool) {
	c.Lock()
	defer c.Unlock()

	d, ok := c.byName[linkName(attrs.Name)]
	if !ok {
		return ofp13.OfpPort{}, false
	}

	config, state := portConfig(attrs), portState(attrs)
	if d.Config == config && d.State == state {
		return *d, false
	}

	klog.V(4).Infof("port %d (%s): config %#x -> %#x, state %#x -> %#x",
		d.PortNo, d.Name, d.Config, config, d.State, state)

	d.Config = config
	d.State = state
	return *d, true
}

func linkName(name string) string {
	if len(name) >= ofp13.OFP_MAX_PORT_NAME_LEN {
		return name[:ofp13.OFP_MAX_PORT_NAME_LEN-1]
	}
	return name
}
