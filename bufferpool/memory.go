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
	"errors"
	"unsafe"
)

// Handle is the platform level address a NIC uses to reach the storage of a
// descriptor.
type Handle uintptr

// Memory is the platform packet-memory manager descriptors are carved from.
// Alloc and Map are paired with Free and Unmap; a slot owns one of each.
type Memory interface {
	Alloc(size int) ([]byte, error)
	Map(buf []byte) (Handle, error)
	Unmap(buf []byte) error
	Free(buf []byte) error
}

var errEmptyBuffer = errors.New("empty packet buffer")

func handleOf(buf []byte) (Handle, error) {
	if len(buf) == 0 {
		return 0, errEmptyBuffer
	}

	return Handle(uintptr(unsafe.Pointer(&buf[0]))), nil
}

type heapMemory struct{}

// NewHeapMemory returns a Memory backed by the Go heap. Handles are only
// meaningful to this process.
func NewHeapMemory() Memory {
	return heapMemory{}
}

func (heapMemory) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errEmptyBuffer
	}
	return make([]byte, size), nil
}

func (heapMemory) Map(buf []byte) (Handle, error) {
	return handleOf(buf)
}

func (heapMemory) Unmap(buf []byte) error {
	return nil
}

func (heapMemory) Free(buf []byte) error {
	return nil
}
