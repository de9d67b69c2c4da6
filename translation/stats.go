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

package translation

import (
	"time"

	"github.com/Kmotiko/gofc/ofprotocol/ofp13"

	"github.com/k-vswitch/softswitch/pipeline"
)

func splitDuration(d time.Duration) (sec, nsec uint32) {
	if d < 0 {
		return 0, 0
	}
	return uint32(d / time.Second), uint32(d % time.Second)
}

// ToWireFlowStats reports entry and its counters in a flow stats reply.
func (t *Translator) ToWireFlowStats(entry *pipeline.FlowEntry, stats pipeline.FlowStats) (*ofp13.OfpFlowStats, error) {
	match, err := t.ToWireMatch(entry.Match)
	if err != nil {
		return nil, err
	}

	instructions, err := t.ToWireInstructions(entry)
	if err != nil {
		return nil, err
	}

	fs := new(ofp13.OfpFlowStats)
	fs.TableId = entry.TableID
	fs.DurationSec, fs.DurationNSec = splitDuration(stats.Duration)
	fs.Priority = entry.Priority
	fs.IdleTimeout = entry.IdleTimeout
	fs.HardTimeout = entry.HardTimeout
	fs.Flags = entry.Flags
	fs.Cookie = entry.Cookie
	fs.PacketCount = stats.PacketCount
	fs.ByteCount = stats.ByteCount
	fs.Match = match
	fs.Instructions = instructions
	fs.Length = uint16(fs.Size())

	return fs, nil
}

// ToWireFlowRemoved builds the flow-removed notification for entry.
func (t *Translator) ToWireFlowRemoved(entry *pipeline.FlowEntry, reason uint8, stats pipeline.FlowStats) (*ofp13.OfpFlowRemoved, error) {
	match, err := t.ToWireMatch(entry.Match)
	if err != nil {
		return nil, err
	}

	msg := &ofp13.OfpFlowRemoved{Header: t.header(ofp13.OFPT_FLOW_REMOVED)}
	msg.Cookie = entry.Cookie
	msg.Priority = entry.Priority
	msg.Reason = reason
	msg.TableId = entry.TableID
	msg.DurationSec, msg.DurationNSec = splitDuration(stats.Duration)
	msg.IdleTimeout = entry.IdleTimeout
	msg.HardTimeout = entry.HardTimeout
	msg.PacketCount = stats.PacketCount
	msg.ByteCount = stats.ByteCount
	msg.Match = match

	return msg, nil
}
