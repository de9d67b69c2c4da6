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

	"github.com/k-vswitch/softswitch/pipeline"
)

// Frame is a received packet. A buffer pool descriptor satisfies it.
type Frame interface {
	BufferID() uint32
	Bytes() []byte
}

// ToWirePacketIn builds the packet-in for frame. The packet data is cut to
// maxLen bytes when the frame is kept in a switch buffer.
func (t *Translator) ToWirePacketIn(frame Frame, match *pipeline.Match, reason, tableID uint8, cookie uint64, maxLen uint16) (*ofp13.OfpPacketIn, error) {
	wireMatch, err := t.ToWireMatch(match)
	if err != nil {
		return nil, err
	}

	data := frame.Bytes()
	bufferID := frame.BufferID()
	if bufferID != ofp13.OFP_NO_BUFFER && maxLen != ofp13.OFPCML_NO_BUFFER && len(data) > int(maxLen) {
		data = data[:maxLen]
	}

	return &ofp13.OfpPacketIn{
		Header:   t.header(ofp13.OFPT_PACKET_IN),
		BufferId: bufferID,
		TotalLen: uint16(len(frame.Bytes())),
		Reason:   reason,
		TableId:  tableID,
		Cookie:   cookie,
		Match:    wireMatch,
		Data:     append([]uint8(nil), data...),
	}, nil
}
