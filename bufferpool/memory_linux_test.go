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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MmapMemory(t *testing.T) {
	mem := NewMmapMemory(false)

	buf, err := mem.Alloc(DefaultSlotSize)
	require.NoError(t, err)
	require.Len(t, buf, DefaultSlotSize)

	handle, err := mem.Map(buf)
	require.NoError(t, err)
	assert.NotZero(t, handle)

	buf[0], buf[len(buf)-1] = 0xaa, 0xbb
	assert.Equal(t, byte(0xaa), buf[0])

	require.NoError(t, mem.Unmap(buf))
	require.NoError(t, mem.Free(buf))

	_, err = mem.Alloc(0)
	assert.Error(t, err)
}

func Test_MmapPool(t *testing.T) {
	pool := New(Config{Capacity: 8, SlotSize: 256}, WithMemory(NewMmapMemory(false)))
	pool.Init()

	desc, err := pool.Acquire()
	require.NoError(t, err)
	assert.Len(t, desc.Data(), 256)
	pool.Release(desc)

	require.NoError(t, pool.Destroy())
}
