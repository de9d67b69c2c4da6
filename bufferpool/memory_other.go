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

//go:build !linux

package bufferpool

import "k8s.io/klog"

// NewMmapMemory falls back to heap memory where anonymous mappings are not
// available.
func NewMmapMemory(lock bool) Memory {
	klog.Warning("mmap packet memory is not supported on this platform, using heap memory")
	return NewHeapMemory()
}

func defaultMemory() Memory {
	return NewHeapMemory()
}
