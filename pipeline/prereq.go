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
	"github.com/pkg/errors"
)

var ErrPrerequisite = errors.New("match prerequisite not met")

const (
	EtherTypeIPv4      = 0x0800
	EtherTypeARP       = 0x0806
	EtherTypeVLAN      = 0x8100
	EtherTypeQinQ      = 0x88a8
	EtherTypeIPv6      = 0x86dd
	EtherTypeMPLS      = 0x8847
	EtherTypeMPLSMcast = 0x8848
	EtherTypePBB       = 0x88e7

	IPProtoICMP   = 1
	IPProtoTCP    = 6
	IPProtoUDP    = 17
	IPProtoICMPv6 = 58
	IPProtoSCTP   = 132

	// VlanPresent is set in a vlan_vid value when a VLAN tag exists.
	VlanPresent = 0x1000

	icmpv6NeighborSolicitation  = 135
	icmpv6NeighborAdvertisement = 136
)

// prerequisite requires field to be present with one of values.
type prerequisite struct {
	field  MatchType
	values []uint64
}

var (
	needIP     = prerequisite{EthType, []uint64{EtherTypeIPv4, EtherTypeIPv6}}
	needIPv4   = prerequisite{EthType, []uint64{EtherTypeIPv4}}
	needIPv6   = prerequisite{EthType, []uint64{EtherTypeIPv6}}
	needARP    = prerequisite{EthType, []uint64{EtherTypeARP}}
	needMPLS   = prerequisite{EthType, []uint64{EtherTypeMPLS, EtherTypeMPLSMcast}}
	needTCP    = prerequisite{IPProto, []uint64{IPProtoTCP}}
	needUDP    = prerequisite{IPProto, []uint64{IPProtoUDP}}
	needSCTP   = prerequisite{IPProto, []uint64{IPProtoSCTP}}
	needICMP   = prerequisite{IPProto, []uint64{IPProtoICMP}}
	needICMPv6 = prerequisite{IPProto, []uint64{IPProtoICMPv6}}
)

var prerequisites = map[MatchType][]prerequisite{
	IPDscp:       {needIP},
	IPEcn:        {needIP},
	IPProto:      {needIP},
	IPv4Src:      {needIPv4},
	IPv4Dst:      {needIPv4},
	IPv6Src:      {needIPv6},
	IPv6Dst:      {needIPv6},
	IPv6FLabel:   {needIPv6},
	IPv6ExtHdr:   {needIPv6},
	ArpOp:        {needARP},
	ArpSpa:       {needARP},
	ArpTpa:       {needARP},
	ArpSha:       {needARP},
	ArpTha:       {needARP},
	MplsLabel:    {needMPLS},
	MplsTC:       {needMPLS},
	MplsBos:      {needMPLS},
	PbbIsid:      {{EthType, []uint64{EtherTypePBB}}},
	TCPSrc:       {needTCP, needIP},
	TCPDst:       {needTCP, needIP},
	UDPSrc:       {needUDP, needIP},
	UDPDst:       {needUDP, needIP},
	SCTPSrc:      {needSCTP, needIP},
	SCTPDst:      {needSCTP, needIP},
	ICMPv4Type:   {needICMP, needIPv4},
	ICMPv4Code:   {needICMP, needIPv4},
	ICMPv6Type:   {needICMPv6, needIPv6},
	ICMPv6Code:   {needICMPv6, needIPv6},
	IPv6NdTarget: {{ICMPv6Type, []uint64{icmpv6NeighborSolicitation, icmpv6NeighborAdvertisement}}, needICMPv6, needIPv6},
	IPv6NdSll:    {{ICMPv6Type, []uint64{icmpv6NeighborSolicitation}}, needICMPv6, needIPv6},
	IPv6NdTll:    {{ICMPv6Type, []uint64{icmpv6NeighborAdvertisement}}, needICMPv6, needIPv6},
}

// Validate checks that every present field has the fields it depends on,
// e.g. tcp_dst needs ip_proto=6 and an IP eth_type.
func (m *Match) Validate() error {
	for _, t := range m.Types() {
		for _, pre := range prerequisites[t] {
			if !m.satisfies(pre) {
				return errors.Wrapf(ErrPrerequisite, "%s requires %s", t, pre.field)
			}
		}
	}

	if m.Has(VlanPcp) {
		vid, _ := m.Uint(VlanVid)
		if !m.Has(VlanVid) || vid&VlanPresent == 0 {
			return errors.Wrapf(ErrPrerequisite, "%s requires a present %s", VlanPcp, VlanVid)
		}
	}

	return nil
}

func (m *Match) satisfies(pre prerequisite) bool {
	pred, ok := m.Get(pre.field)
	if !ok || pred.Masked() {
		return false
	}

	v, _ := m.Uint(pre.field)
	for _, want := range pre.values {
		if v == want {
			return true
		}
	}
	return false
}
