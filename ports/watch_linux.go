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
	"github.com/Kmotiko/gofc/ofprotocol/ofp13"
	"github.com/vishvananda/netlink"
)

// Watch applies the link updates received on updates until it is closed
// or stopCh is closed. changed is called for every port whose config or
// state changed.
func (c *Cache) Watch(updates <-chan netlink.LinkUpdate, stopCh <-chan struct{}, changed func(ofp13.OfpPort)) {
	for {
		select {
		case <-stopCh:
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if u.Link == nil {
				continue
			}
			if desc, ok := c.Update(*u.Link.Attrs()); ok && changed != nil {
				changed(desc)
			}
		}
	}
}
