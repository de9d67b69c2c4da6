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
	"math/bits"
)

// Bitmap is a capability bit vector. Bit i stands for the capability at
// index i of a CapabilityTable.
type Bitmap interface {
	~uint32 | ~uint64
}

// CapabilityTable maps bit positions to wire identifiers and back.
type CapabilityTable[ID comparable] struct {
	ids       [64]ID
	present   uint64
	bits      map[ID]uint
	normalize func(ID) ID
}

// NewCapabilityTable returns an empty table. normalize, when set, is
// applied to identifiers before they are looked up.
func NewCapabilityTable[ID comparable](normalize func(ID) ID) *CapabilityTable[ID] {
	return &CapabilityTable[ID]{
		bits:      make(map[ID]uint),
		normalize: normalize,
	}
}

// Add binds bit to id. Bits beyond 63 are ignored.
func (c *CapabilityTable[ID]) Add(bit uint, id ID) {
	if bit >= 64 {
		return
	}
	c.ids[bit] = id
	c.present |= 1 << bit
	c.bits[c.key(id)] = bit
}

// ID returns the identifier bound to bit.
func (c *CapabilityTable[ID]) ID(bit uint) (ID, bool) {
	if bit >= 64 || c.present&(1<<bit) == 0 {
		var zero ID
		return zero, false
	}
	return c.ids[bit], true
}

// Bit returns the bit bound to id.
func (c *CapabilityTable[ID]) Bit(id ID) (uint, bool) {
	bit, ok := c.bits[c.key(id)]
	return bit, ok
}

// Mask has every bound bit set.
func (c *CapabilityTable[ID]) Mask() uint64 {
	return c.present
}

func (c *CapabilityTable[ID]) Len() int {
	return bits.OnesCount64(c.present)
}

func (c *CapabilityTable[ID]) key(id ID) ID {
	if c.normalize == nil {
		return id
	}
	return c.normalize(id)
}

// BitmapToProperties emits one identifier per set bit, lowest bit first.
// Bits the table does not bind are skipped.
func BitmapToProperties[B Bitmap, ID comparable](bitmap B, table *CapabilityTable[ID]) []ID {
	set := uint64(bitmap) & table.present
	ids := make([]ID, 0, bits.OnesCount64(set))

	for ; set != 0; set &= set - 1 {
		ids = append(ids, table.ids[bits.TrailingZeros64(set)])
	}
	return ids
}

// PropertiesToBitmap sets the bit of every identifier the table knows.
// Unknown identifiers are ignored.
func PropertiesToBitmap[B Bitmap, ID comparable](ids []ID, table *CapabilityTable[ID]) B {
	var bitmap B
	for _, id := range ids {
		bit, ok := table.Bit(id)
		if !ok || bit >= uint(bits.OnesCount64(uint64(^B(0)))) {
			continue
		}
		bitmap |= B(1) << bit
	}
	return bitmap
}
