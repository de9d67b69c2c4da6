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
)

// portSpeeds lists the speed features from fastest to slowest, in kbps.
var portSpeeds = []struct {
	feature uint32
	kbps    uint32
}{
	{ofp13.OFPPF_1TB_FD, 1000000000},
	{ofp13.OFPPF_100GB_FD, 100000000},
	{ofp13.OFPPF_40GB_FD, 40000000},
	{ofp13.OFPPF_10GB_FD, 10000000},
	{ofp13.OFPPF_1GB_FD | ofp13.OFPPF_1GB_HD, 1000000},
	{ofp13.OFPPF_100MB_FD | ofp13.OFPPF_100MB_HD, 100000},
	{ofp13.OFPPF_10MB_FD | ofp13.OFPPF_10MB_HD, 10000},
}

// PortSpeedKb returns the bitrate of the fastest speed in an OFPPF feature
// set. It is 0 when no fixed speed is set.
func PortSpeedKb(features uint32) uint32 {
	for _, s := range portSpeeds {
		if features&s.feature != 0 {
			return s.kbps
		}
	}
	return 0
}
