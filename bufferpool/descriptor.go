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

	"github.com/Kmotiko/gofc/ofprotocol/ofp13"
)

// UnsetBufferID is the external buffer id of a descriptor that is not
// referenced by any controller message.
const UnsetBufferID uint32 = ofp13.OFP_NO_BUFFER

// Descriptor is a packet buffer owned either by its pool or by exactly one
// caller between Acquire and Release.
type Descriptor struct {
	pool       *Pool
	internalID uint32
	bufferID   uint32
	handle     Handle
	data       []byte
	length     int

	// InPort is the switch port the frame was received on.
	InPort uint32
}

// InternalID is the index of the slot holding d. It never changes.
func (d *Descriptor) InternalID() uint32 {
	return d.internalID
}

// BufferID is the id controllers use to refer to the frame, or UnsetBufferID.
func (d *Descriptor) BufferID() uint32 {
	return d.bufferID
}

func (d *Descriptor) SetBufferID(id uint32) {
	d.bufferID = id
}

func (d *Descriptor) Handle() Handle {
	return d.handle
}

// Data returns the whole backing storage of the descriptor.
func (d *Descriptor) Data() []byte {
	return d.data
}

// Bytes returns the frame currently held by the descriptor.
func (d *Descriptor) Bytes() []byte {
	return d.data[:d.length]
}

func (d *Descriptor) Len() int {
	return d.length
}

// SetLength sets the length of the frame written into Data.
func (d *Descriptor) SetLength(n int) error {
	if n < 0 || n > len(d.data) {
		return fmt.Errorf("frame length %d out of range [0, %d]", n, len(d.data))
	}

	d.length = n
	return nil
}

func (d *Descriptor) reset() {
	d.bufferID = UnsetBufferID
	d.length = 0
	d.InPort = 0
}
