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

package pipeline

import (
	"bytes"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ipv4Match(dst string) *Match {
	m := NewMatch()
	m.SetUint(EthType, EtherTypeIPv4)
	m.SetIP(IPv4Dst, net.ParseIP(dst), nil)
	return m
}

func Test_FlowEntry(t *testing.T) {
	tests := []struct {
		name        string
		entry       func() *FlowEntry
		entryString string
	}{
		{
			name: "entry, no match with output port",
			entry: func() *FlowEntry {
				e := NewFlowEntry().WithTable(0).WithPriority(100)
				e.Instructions.AddApplyActions(ActionList{Output(1, 0)})
				return e
			},
			entryString: "table=0 priority=100 actions=output:1",
		},
		{
			name: "entry, with ipv4 match, set field and output port",
			entry: func() *FlowEntry {
				e := NewFlowEntry().WithTable(10).WithPriority(15).WithCookie(0x10, 0).WithMatch(ipv4Match("10.0.0.1"))
				e.Instructions.AddApplyActions(ActionList{
					{Type: ActionSetField, Field: EthDst, Value: []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}},
					Output(2, 0),
				})
				return e
			},
			entryString: "table=10 priority=15 cookie=0x10 eth_type=0x800 ipv4_dst=10.0.0.1 actions=set_field:aa:bb:cc:dd:ee:ff->eth_dst,output:2",
		},
		{
			name: "entry, no instructions",
			entry: func() *FlowEntry {
				return NewFlowEntry().WithTable(20)
			},
			entryString: "table=20 priority=0 actions=drop",
		},
		{
			name: "entry, with timeouts",
			entry: func() *FlowEntry {
				return NewFlowEntry().WithPriority(1).WithIdleTimeout(30).WithHardTimeout(60)
			},
			entryString: "table=0 priority=1 idle_timeout=30 hard_timeout=60 actions=drop",
		},
		{
			name: "entry, with write actions and goto table",
			entry: func() *FlowEntry {
				e := NewFlowEntry().WithPriority(5)
				e.Instructions.AddWriteActions(ActionList{Output(3, 0)})
				e.Instructions.AddGotoTable(1)
				return e
			},
			entryString: "table=0 priority=5 actions=write_actions(output:3),goto_table:1",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			entry := test.entry()
			if entry.String() != test.entryString {
				t.Logf("actual entry: %q", entry.String())
				t.Logf("expected entry: %q", test.entryString)
				t.Error("unexpected entry string")
			}
		})
	}
}

func Test_NewFlowEntryDefaults(t *testing.T) {
	e := NewFlowEntry()
	assert.Equal(t, NoBuffer, e.BufferID)
	assert.Equal(t, PortAny, e.OutPort)
	assert.Equal(t, GroupAny, e.OutGroup)
	require.NotNil(t, e.Match)
	assert.Equal(t, 0, e.Match.Len())
	assert.Equal(t, 0, e.Instructions.Len())
}

func Test_EntriesBuffer(t *testing.T) {
	first := NewFlowEntry().WithPriority(100)
	first.Instructions.AddApplyActions(ActionList{Output(1, 0)})

	second := NewFlowEntry().WithTable(10).WithPriority(15).WithMatch(ipv4Match("10.0.0.1"))
	second.Instructions.AddApplyActions(ActionList{Output(2, 0)})

	group := &GroupEntry{
		ID:   1,
		Type: GroupAll,
		Buckets: BucketList{
			{WatchPort: PortAny, WatchGroup: GroupAny, Actions: ActionList{Output(1, 0)}},
			{WatchPort: PortAny, WatchGroup: GroupAny, Actions: ActionList{Output(2, 0)}},
		},
	}

	buffer := NewEntriesBuffer()
	buffer.AddEntry(first)
	buffer.AddEntry(second)
	buffer.AddGroup(group)

	expected := "table=0 priority=100 actions=output:1\n" +
		"table=10 priority=15 eth_type=0x800 ipv4_dst=10.0.0.1 actions=output:2\n" +
		"group_id=1 type=all bucket=actions=output:1 bucket=actions=output:2\n"

	if buffer.String() != expected {
		t.Logf("actual entries: %q", buffer.String())
		t.Logf("expected entries: %q", expected)
		t.Error("unexpected entries")
	}

	var out bytes.Buffer
	n, err := buffer.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(len(expected)), n)
	assert.Equal(t, expected, out.String())
	assert.Equal(t, expected, buffer.String())

	buffer.Reset()
	assert.Equal(t, "", buffer.String())
}

func Test_GroupValidate(t *testing.T) {
	output := ActionList{Output(1, 0)}

	tests := []struct {
		name  string
		group GroupEntry
		err   error
	}{
		{
			name: "select group with weights",
			group: GroupEntry{ID: 1, Type: GroupSelect, Buckets: BucketList{
				{Weight: 1, WatchPort: PortAny, WatchGroup: GroupAny, Actions: output},
				{Weight: 2, WatchPort: PortAny, WatchGroup: GroupAny, Actions: output},
			}},
		},
		{
			name: "all group with weight",
			group: GroupEntry{ID: 2, Type: GroupAll, Buckets: BucketList{
				{Weight: 1, WatchPort: PortAny, WatchGroup: GroupAny, Actions: output},
			}},
			err: ErrWeightUnsupported,
		},
		{
			name: "indirect group with two buckets",
			group: GroupEntry{ID: 3, Type: GroupIndirect, Buckets: BucketList{
				{WatchPort: PortAny, WatchGroup: GroupAny, Actions: output},
				{WatchPort: PortAny, WatchGroup: GroupAny, Actions: output},
			}},
			err: ErrBadBucket,
		},
		{
			name: "fast failover bucket without watch",
			group: GroupEntry{ID: 4, Type: GroupFastFailover, Buckets: BucketList{
				{WatchPort: 1, WatchGroup: GroupAny, Actions: output},
				{WatchPort: PortAny, WatchGroup: GroupAny, Actions: output},
			}},
			err: ErrBadWatch,
		},
		{
			name:  "unknown group type",
			group: GroupEntry{ID: 5, Type: GroupType(9)},
			err:   ErrUnknownGroupType,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.group.Validate()
			if test.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, test.err)
		})
	}
}

func Test_TableCapabilitiesSupports(t *testing.T) {
	caps := DefaultCapabilities(0, 1024)
	assert.Equal(t, "table0", caps.Name)

	masked := NewFlowEntry()
	masked.Match.SetUint(EthType, EtherTypeIPv4)
	masked.Match.SetIP(IPv4Dst, net.ParseIP("10.0.0.0"), net.CIDRMask(8, 32))
	masked.Instructions.AddApplyActions(ActionList{Output(1, 0)})
	assert.True(t, caps.Supports(masked))

	caps.Wildcards &^= MatchBitmap(IPv4Dst)
	assert.False(t, caps.Supports(masked))

	caps = DefaultCapabilities(0, 1024)
	caps.ApplyActions &^= ActionBitmap(ActionOutput)
	assert.False(t, caps.Supports(masked))

	caps = DefaultCapabilities(0, 1024)
	caps.Instructions = InstructionBitmap(InstructionGotoTable)
	assert.False(t, caps.Supports(masked))
}
