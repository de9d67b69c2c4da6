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

	"golang.org/x/sys/unix"
)

type mmapMemory struct {
	lock bool
}

// NewMmapMemory returns a Memory that maps every slot as an anonymous private
// mapping. With lock set the pages are also pinned with mlock, which fails once
// RLIMIT_MEMLOCK is reached and leaves the remaining slots unavailable.
func NewMmapMemory(lock bool) Memory {
	return &mmapMemory{lock: lock}
}

func (m *mmapMemory) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, errEmptyBuffer
	}

	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("error mapping %d bytes: %v", size, err)
	}

	return buf, nil
}

func (m *mmapMemory) Map(buf []byte) (Handle, error) {
	handle, err := handleOf(buf)
	if err != nil {
		return 0, err
	}

	if m.lock {
		if err := unix.Mlock(buf); err != nil {
			return 0, fmt.Errorf("error locking packet buffer: %v", err)
		}
	}

	return handle, nil
}

func (m *mmapMemory) Unmap(buf []byte) error {
	if !m.lock {
		return nil
	}

	if err := unix.Munlock(buf); err != nil {
		return fmt.Errorf("error unlocking packet buffer: %v", err)
	}
	return nil
}

func (m *mmapMemory) Free(buf []byte) error {
	if err := unix.Munmap(buf); err != nil {
		return fmt.Errorf("error unmapping packet buffer: %v", err)
	}
	return nil
}

func defaultMemory() Memory {
	return NewMmapMemory(false)
}
