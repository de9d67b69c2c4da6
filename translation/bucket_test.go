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
	"testing"

	"github.com/Kmotiko/gofc/ofprotocol/ofp13"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-vswitch/softswitch/pipeline"
)

func bucket(weight uint16, watchPort, watchGroup uint32, actions ...ofp13.OfpAction) *ofp13.OfpBucket {
	b := ofp13.NewOfpBucket(weight, watchPort, watchGroup)
	for _, a := range actions {
		b.Append(a)
	}
	return b
}

func groupMod(command uint16, groupType uint8, id uint32, buckets ...*ofp13.OfpBucket) *ofp13.OfpGroupMod {
	if buckets == nil {
		buckets = make([]*ofp13.OfpBucket, 0)
	}
	return &ofp13.OfpGroupMod{
		Header:  ofp13.OfpHeader{Version: Version13, Type: ofp13.OFPT_GROUP_MOD, Length: 8},
		Command: command,
		Type:    groupType,
		GroupId: id,
		Buckets: buckets,
	}
}

func Test_BucketsKeepOrder(t *testing.T) {
	tr := newTranslator(t, Version13)

	wire := []*ofp13.OfpBucket{
		bucket(3, ofp13.OFPP_ANY, ofp13.OFPG_ANY, ofp13.NewOfpActionOutput(3, 0)),
		bucket(1, ofp13.OFPP_ANY, ofp13.OFPG_ANY, ofp13.NewOfpActionOutput(1, 0)),
		bucket(2, ofp13.OFPP_ANY, ofp13.OFPG_ANY, ofp13.NewOfpActionDecNwTtl(), ofp13.NewOfpActionOutput(2, 0)),
	}

	buckets, err := tr.ToPipelineBuckets(wire)
	require.NoError(t, err)

	expected := pipeline.BucketList{
		{Weight: 3, WatchPort: pipeline.PortAny, WatchGroup: pipeline.GroupAny, Actions: pipeline.ActionList{pipeline.Output(3, 0)}},
		{Weight: 1, WatchPort: pipeline.PortAny, WatchGroup: pipeline.GroupAny, Actions: pipeline.ActionList{pipeline.Output(1, 0)}},
		{Weight: 2, WatchPort: pipeline.PortAny, WatchGroup: pipeline.GroupAny, Actions: pipeline.ActionList{
			pipeline.Simple(pipeline.ActionDecNwTTL), pipeline.Output(2, 0),
		}},
	}
	if diff := cmp.Diff(expected, buckets); diff != "" {
		t.Errorf("unexpected buckets (-want +got):\n%s", diff)
	}

	back, err := tr.ToWireBuckets(buckets)
	require.NoError(t, err)
	require.Len(t, back, len(wire))
	for i := range wire {
		assert.Equal(t, wire[i].Serialize(), back[i].Serialize(), "bucket %d", i)
	}
}

func Test_ToPipelineBucketsErrors(t *testing.T) {
	tr := newTranslator(t, Version13)

	_, err := tr.ToPipelineBuckets([]*ofp13.OfpBucket{nil})
	requireError(t, err, ErrMalformedMessage, ofp13.OFPET_GROUP_MOD_FAILED, ofp13.OFPGMFC_BAD_BUCKET)

	_, err = tr.ToPipelineBuckets([]*ofp13.OfpBucket{
		bucket(0, ofp13.OFPP_ANY, ofp13.OFPG_ANY, ofp13.NewOfpActionOutput(ofp13.OFPP_ANY, 0)),
	})
	requireError(t, err, ErrMalformedMessage, ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_OUT_PORT)
}

func Test_ToPipelineGroup(t *testing.T) {
	output := func(port uint32) ofp13.OfpAction { return ofp13.NewOfpActionOutput(port, 0) }

	tests := []struct {
		name    string
		mod     *ofp13.OfpGroupMod
		group   string
		kind    error
		errType uint16
		code    uint16
	}{
		{
			name: "select group",
			mod: groupMod(ofp13.OFPGC_ADD, ofp13.OFPGT_SELECT, 1,
				bucket(1, ofp13.OFPP_ANY, ofp13.OFPG_ANY, output(1)),
				bucket(2, ofp13.OFPP_ANY, ofp13.OFPG_ANY, output(2))),
			group: "group_id=1 type=select bucket=weight:1,actions=output:1 bucket=weight:2,actions=output:2",
		},
		{
			name: "fast failover group",
			mod: groupMod(ofp13.OFPGC_MODIFY, ofp13.OFPGT_FF, 2,
				bucket(0, 1, ofp13.OFPG_ANY, output(1)),
				bucket(0, 2, ofp13.OFPG_ANY, output(2))),
			group: "group_id=2 type=ff bucket=watch_port:1,actions=output:1 bucket=watch_port:2,actions=output:2",
		},
		{
			name:  "delete skips bucket checks",
			mod:   groupMod(ofp13.OFPGC_DELETE, ofp13.OFPGT_INDIRECT, ofp13.OFPG_ALL),
			group: "group_id=4294967292 type=indirect",
		},
		{
			name:    "missing group-mod",
			kind:    ErrMalformedMessage,
			errType: ofp13.OFPET_BAD_REQUEST,
			code:    ofp13.OFPBRC_BAD_LEN,
		},
		{
			name:    "unknown command",
			mod:     groupMod(9, ofp13.OFPGT_ALL, 1),
			kind:    ErrMalformedMessage,
			errType: ofp13.OFPET_GROUP_MOD_FAILED,
			code:    ofp13.OFPGMFC_BAD_COMMAND,
		},
		{
			name:    "reserved group id",
			mod:     groupMod(ofp13.OFPGC_ADD, ofp13.OFPGT_ALL, ofp13.OFPG_ANY),
			kind:    ErrMalformedMessage,
			errType: ofp13.OFPET_GROUP_MOD_FAILED,
			code:    ofp13.OFPGMFC_INVALID_GROUP,
		},
		{
			name:    "unknown group type",
			mod:     groupMod(ofp13.OFPGC_ADD, 7, 1),
			kind:    ErrUnsupportedField,
			errType: ofp13.OFPET_GROUP_MOD_FAILED,
			code:    ofp13.OFPGMFC_BAD_TYPE,
		},
		{
			name: "weight on all group",
			mod: groupMod(ofp13.OFPGC_ADD, ofp13.OFPGT_ALL, 1,
				bucket(5, ofp13.OFPP_ANY, ofp13.OFPG_ANY, output(1))),
			kind:    ErrMalformedMessage,
			errType: ofp13.OFPET_GROUP_MOD_FAILED,
			code:    ofp13.OFPGMFC_WEIGHT_UNSUPPORTED,
		},
		{
			name: "indirect group with two buckets",
			mod: groupMod(ofp13.OFPGC_ADD, ofp13.OFPGT_INDIRECT, 1,
				bucket(0, ofp13.OFPP_ANY, ofp13.OFPG_ANY, output(1)),
				bucket(0, ofp13.OFPP_ANY, ofp13.OFPG_ANY, output(2))),
			kind:    ErrMalformedMessage,
			errType: ofp13.OFPET_GROUP_MOD_FAILED,
			code:    ofp13.OFPGMFC_BAD_BUCKET,
		},
		{
			name: "fast failover without watch",
			mod: groupMod(ofp13.OFPGC_ADD, ofp13.OFPGT_FF, 1,
				bucket(0, ofp13.OFPP_ANY, ofp13.OFPG_ANY, output(1))),
			kind:    ErrMalformedMessage,
			errType: ofp13.OFPET_GROUP_MOD_FAILED,
			code:    ofp13.OFPGMFC_BAD_WATCH,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tr := newTranslator(t, Version13)

			group, err := tr.ToPipelineGroup(test.mod)
			if test.kind != nil {
				assert.Nil(t, group)
				requireError(t, err, test.kind, test.errType, test.code)
				return
			}

			require.NoError(t, err)
			if group.String() != test.group {
				t.Logf("actual group: %q", group.String())
				t.Logf("expected group: %q", test.group)
				t.Error("unexpected group")
			}
		})
	}
}

func Test_ToWireGroupMod(t *testing.T) {
	tr := newTranslator(t, Version13)

	group := &pipeline.GroupEntry{
		ID:   10,
		Type: pipeline.GroupSelect,
		Buckets: pipeline.BucketList{
			{Weight: 2, WatchPort: pipeline.PortAny, WatchGroup: pipeline.GroupAny, Actions: pipeline.ActionList{pipeline.Output(4, 0)}},
			{Weight: 1, WatchPort: pipeline.PortAny, WatchGroup: pipeline.GroupAny, Actions: pipeline.ActionList{pipeline.Group(11)}},
		},
	}

	mod, err := tr.ToWireGroupMod(group, ofp13.OFPGC_ADD)
	require.NoError(t, err)
	assert.Equal(t, uint8(ofp13.OFPGT_SELECT), mod.Type)
	assert.Equal(t, uint32(10), mod.GroupId)
	require.Len(t, mod.Buckets, 2)
	assert.Equal(t, uint16(2), mod.Buckets[0].Weight)

	back, err := tr.ToPipelineGroup(mod)
	require.NoError(t, err)
	if diff := cmp.Diff(group, back); diff != "" {
		t.Errorf("unexpected group (-want +got):\n%s", diff)
	}

	_, err = tr.ToWireGroupMod(group, 5)
	requireError(t, err, ErrMalformedMessage, ofp13.OFPET_GROUP_MOD_FAILED, ofp13.OFPGMFC_BAD_COMMAND)
}
