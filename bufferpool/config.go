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

package bufferpool

import (
	"fmt"
)

const (
	// ReservedSlots is added to every requested capacity for buffers
	// originated by the control plane, such as packet-out.
	ReservedSlots = 256

	DefaultSlotSize = 2048
)

// Policy decides what Acquire does when no slot is free.
type Policy int

const (
	// PolicyBlocking waits until a descriptor is released.
	PolicyBlocking Policy = iota
	// PolicyNonBlocking fails with ErrPoolExhausted.
	PolicyNonBlocking
)

func (p Policy) String() string {
	switch p {
	case PolicyBlocking:
		return "blocking"
	case PolicyNonBlocking:
		return "non-blocking"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "blocking":
		return PolicyBlocking, nil
	case "non-blocking", "nonblocking":
		return PolicyNonBlocking, nil
	default:
		return 0, fmt.Errorf("unknown exhaustion policy %q", s)
	}
}

type Config struct {
	// Capacity is the number of slots requested by the caller, ReservedSlots
	// are added on top of it.
	Capacity int
	// SlotSize is the size in bytes of the storage of every descriptor.
	SlotSize int
	Policy   Policy
}

func (c *Config) applyDefaults() {
	if c.Capacity < 0 {
		panic(fmt.Sprintf("bufferpool: negative capacity %d", c.Capacity))
	}
	if c.SlotSize == 0 {
		c.SlotSize = DefaultSlotSize
	}
}
