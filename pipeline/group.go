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
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnknownGroupType  = errors.New("unknown group type")
	ErrBadBucket         = errors.New("bad bucket")
	ErrWeightUnsupported = errors.New("bucket weight not supported")
	ErrBadWatch          = errors.New("bad bucket watch")
)

type GroupType uint8

const (
	GroupAll GroupType = iota
	GroupSelect
	GroupIndirect
	GroupFastFailover
)

func (t GroupType) String() string {
	switch t {
	case GroupAll:
		return "all"
	case GroupSelect:
		return "select"
	case GroupIndirect:
		return "indirect"
	case GroupFastFailover:
		return "ff"
	default:
		return fmt.Sprintf("GroupType(%d)", uint8(t))
	}
}

// Bucket is one action list of a group. Watch fields are PortAny and
// GroupAny when unused.
type Bucket struct {
	Weight     uint16
	WatchPort  uint32
	WatchGroup uint32
	Actions    ActionList
}

func (b Bucket) String() string {
	var parts []string
	if b.Weight != 0 {
		parts = append(parts, fmt.Sprintf("weight:%d", b.Weight))
	}
	if b.WatchPort != PortAny {
		parts = append(parts, fmt.Sprintf("watch_port:%d", b.WatchPort))
	}
	if b.WatchGroup != GroupAny {
		parts = append(parts, fmt.Sprintf("watch_group:%d", b.WatchGroup))
	}
	parts = append(parts, fmt.Sprintf("actions=%s", b.Actions))
	return "bucket=" + strings.Join(parts, ",")
}

// BucketList keeps buckets in the order they were given, which select and
// fast failover groups depend on.
type BucketList []Bucket

type GroupEntry struct {
	ID      uint32
	Type    GroupType
	Buckets BucketList
}

// Validate checks the buckets against the group type.
func (g *GroupEntry) Validate() error {
	switch g.Type {
	case GroupAll, GroupSelect, GroupIndirect, GroupFastFailover:
	default:
		return errors.Wrapf(ErrUnknownGroupType, "%d", uint8(g.Type))
	}

	if g.Type == GroupIndirect && len(g.Buckets) != 1 {
		return errors.Wrapf(ErrBadBucket, "indirect group %d has %d buckets", g.ID, len(g.Buckets))
	}

	for i, b := range g.Buckets {
		if g.Type != GroupSelect && b.Weight != 0 {
			return errors.Wrapf(ErrWeightUnsupported, "bucket %d of %s group %d", i, g.Type, g.ID)
		}
		if g.Type == GroupFastFailover && b.WatchPort == PortAny && b.WatchGroup == GroupAny {
			return errors.Wrapf(ErrBadWatch, "bucket %d of fast failover group %d watches nothing", i, g.ID)
		}
	}

	return nil
}

func (g *GroupEntry) String() string {
	group := fmt.Sprintf("group_id=%d type=%s", g.ID, g.Type)
	for _, b := range g.Buckets {
		group = fmt.Sprintf("%s %s", group, b)
	}
	return group
}
