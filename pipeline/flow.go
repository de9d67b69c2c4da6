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

// Package pipeline holds the flow entries, groups and capabilities the
// forwarding pipeline works on.
package pipeline

import (
	"fmt"
	"time"
)

const (
	NoBuffer uint32 = 0xffffffff
	PortAny  uint32 = 0xffffffff
	GroupAny uint32 = 0xffffffff
)

type FlowEntry struct {
	TableID     uint8
	Priority    uint16
	Cookie      uint64
	CookieMask  uint64
	IdleTimeout uint16
	HardTimeout uint16
	Flags       uint16

	// BufferID, OutPort and OutGroup come from the flow-mod that produced
	// the entry.
	BufferID uint32
	OutPort  uint32
	OutGroup uint32

	Match        *Match
	Instructions InstructionGroup
}

func NewFlowEntry() *FlowEntry {
	return &FlowEntry{
		BufferID: NoBuffer,
		OutPort:  PortAny,
		OutGroup: GroupAny,
		Match:    NewMatch(),
	}
}

// FlowStats are the counters the pipeline keeps for one entry.
type FlowStats struct {
	Duration    time.Duration
	PacketCount uint64
	ByteCount   uint64
}

func (f *FlowEntry) String() string {
	flow := fmt.Sprintf("table=%d priority=%d", f.TableID, f.Priority)

	if f.Cookie != 0 {
		flow = fmt.Sprintf("%s cookie=%#x", flow, f.Cookie)
	}

	if f.IdleTimeout != 0 {
		flow = fmt.Sprintf("%s idle_timeout=%d", flow, f.IdleTimeout)
	}

	if f.HardTimeout != 0 {
		flow = fmt.Sprintf("%s hard_timeout=%d", flow, f.HardTimeout)
	}

	if f.Match != nil && f.Match.Len() > 0 {
		flow = fmt.Sprintf("%s %s", flow, f.Match)
	}

	return fmt.Sprintf("%s actions=%s", flow, f.Instructions.String())
}

func (f *FlowEntry) WithTable(table uint8) *FlowEntry {
	f.TableID = table
	return f
}

func (f *FlowEntry) WithPriority(priority uint16) *FlowEntry {
	f.Priority = priority
	return f
}

func (f *FlowEntry) WithCookie(cookie, mask uint64) *FlowEntry {
	f.Cookie = cookie
	f.CookieMask = mask
	return f
}

func (f *FlowEntry) WithIdleTimeout(seconds uint16) *FlowEntry {
	f.IdleTimeout = seconds
	return f
}

func (f *FlowEntry) WithHardTimeout(seconds uint16) *FlowEntry {
	f.HardTimeout = seconds
	return f
}

func (f *FlowEntry) WithFlags(flags uint16) *FlowEntry {
	f.Flags = flags
	return f
}

func (f *FlowEntry) WithMatch(m *Match) *FlowEntry {
	f.Match = m
	return f
}
