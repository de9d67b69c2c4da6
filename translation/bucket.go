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
	"github.com/Kmotiko/gofc/ofprotocol/ofp13"
	"github.com/pkg/errors"
	"k8s.io/klog"

	"github.com/k-vswitch/softswitch/pipeline"
)

// ToPipelineBuckets translates group buckets. Bucket order is kept.
func (t *Translator) ToPipelineBuckets(buckets []*ofp13.OfpBucket) (pipeline.BucketList, error) {
	list := make(pipeline.BucketList, 0, len(buckets))

	for i, b := range buckets {
		if b == nil {
			return nil, malformed(ofp13.OFPET_GROUP_MOD_FAILED, ofp13.OFPGMFC_BAD_BUCKET, "bucket %d is empty", i)
		}

		actions, err := t.ToPipelineActions(b.Actions)
		if err != nil {
			return nil, err
		}

		list = append(list, pipeline.Bucket{
			Weight:     b.Weight,
			WatchPort:  b.WatchPort,
			WatchGroup: b.WatchGroup,
			Actions:    actions,
		})
	}

	return list, nil
}

// ToWireBuckets translates a bucket list. Bucket order is kept.
func (t *Translator) ToWireBuckets(buckets pipeline.BucketList) ([]*ofp13.OfpBucket, error) {
	wire := make([]*ofp13.OfpBucket, 0, len(buckets))

	for _, b := range buckets {
		actions, err := t.ToWireActions(b.Actions)
		if err != nil {
			return nil, err
		}

		bucket := ofp13.NewOfpBucket(b.Weight, b.WatchPort, b.WatchGroup)
		bucket.Actions = actions
		wire = append(wire, bucket)
	}

	return wire, nil
}

// ToPipelineGroup translates a group-mod. Buckets of delete commands are
// not validated against the group type.
func (t *Translator) ToPipelineGroup(mod *ofp13.OfpGroupMod) (*pipeline.GroupEntry, error) {
	if mod == nil {
		return nil, malformed(ofp13.OFPET_BAD_REQUEST, ofp13.OFPBRC_BAD_LEN, "missing group-mod")
	}

	if mod.Command > ofp13.OFPGC_DELETE {
		return nil, malformed(ofp13.OFPET_GROUP_MOD_FAILED, ofp13.OFPGMFC_BAD_COMMAND, "command %d", mod.Command)
	}

	if mod.GroupId > ofp13.OFPG_MAX && mod.Command != ofp13.OFPGC_DELETE {
		return nil, malformed(ofp13.OFPET_GROUP_MOD_FAILED, ofp13.OFPGMFC_INVALID_GROUP, "group %#x", mod.GroupId)
	}

	buckets, err := t.ToPipelineBuckets(mod.Buckets)
	if err != nil {
		return nil, err
	}

	group := &pipeline.GroupEntry{
		ID:      mod.GroupId,
		Type:    pipeline.GroupType(mod.Type),
		Buckets: buckets,
	}

	if mod.Command != ofp13.OFPGC_DELETE {
		if err := group.Validate(); err != nil {
			klog.V(5).Infof("rejecting group-mod for group %d: %v", mod.GroupId, err)
			return nil, groupError(err)
		}
	}

	klog.V(5).Infof("translated group-mod command %d: %s", mod.Command, group)
	return group, nil
}

// ToWireGroupMod builds the group-mod that carries group with command.
func (t *Translator) ToWireGroupMod(group *pipeline.GroupEntry, command uint16) (*ofp13.OfpGroupMod, error) {
	if command > ofp13.OFPGC_DELETE {
		return nil, malformed(ofp13.OFPET_GROUP_MOD_FAILED, ofp13.OFPGMFC_BAD_COMMAND, "command %d", command)
	}

	buckets, err := t.ToWireBuckets(group.Buckets)
	if err != nil {
		return nil, err
	}

	return &ofp13.OfpGroupMod{
		Header:  t.header(ofp13.OFPT_GROUP_MOD),
		Command: command,
		Type:    uint8(group.Type),
		GroupId: group.ID,
		Buckets: buckets,
	}, nil
}

func groupError(err error) error {
	switch errors.Cause(err) {
	case pipeline.ErrUnknownGroupType:
		return unsupported(ofp13.OFPET_GROUP_MOD_FAILED, ofp13.OFPGMFC_BAD_TYPE, "%v", err)
	case pipeline.ErrWeightUnsupported:
		return malformed(ofp13.OFPET_GROUP_MOD_FAILED, ofp13.OFPGMFC_WEIGHT_UNSUPPORTED, "%v", err)
	case pipeline.ErrBadWatch:
		return malformed(ofp13.OFPET_GROUP_MOD_FAILED, ofp13.OFPGMFC_BAD_WATCH, "%v", err)
	default:
		return malformed(ofp13.OFPET_GROUP_MOD_FAILED, ofp13.OFPGMFC_BAD_BUCKET, "%v", err)
	}
}
