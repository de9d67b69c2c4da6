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
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	srcMAC = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	dstMAC = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
)

func serialize(t *testing.T, l ...gopacket.SerializableLayer) []byte {
	t.Helper()

	buf := gopacket.NewSerializeBuffer()
	options := gopacket.SerializeOptions{FixLengths: true}
	require.NoError(t, gopacket.SerializeLayers(buf, options, l...))
	return buf.Bytes()
}

func requireUint(t *testing.T, m *Match, field MatchType, want uint64) {
	t.Helper()

	v, ok := m.Uint(field)
	require.True(t, ok, "%s not present", field)
	assert.Equal(t, want, v, "%s", field)
}

func Test_ClassifyTCP(t *testing.T) {
	frame := serialize(t,
		&layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: layers.EthernetTypeIPv4},
		&layers.IPv4{
			Version:  4,
			TOS:      0xb9,
			TTL:      64,
			Protocol: layers.IPProtocolTCP,
			SrcIP:    net.IPv4(10, 0, 0, 1),
			DstIP:    net.IPv4(10, 0, 0, 2),
		},
		&layers.TCP{SrcPort: 40000, DstPort: 80, SYN: true, Window: 1024},
	)

	m := Classify(frame, 1, 1, 0)

	requireUint(t, m, InPort, 1)
	assert.False(t, m.Has(InPhyPort))
	assert.False(t, m.Has(Metadata))
	requireUint(t, m, EthType, EtherTypeIPv4)
	requireUint(t, m, IPDscp, 46)
	requireUint(t, m, IPEcn, 1)
	requireUint(t, m, IPProto, IPProtoTCP)
	requireUint(t, m, TCPSrc, 40000)
	requireUint(t, m, TCPDst, 80)

	pred, ok := m.Get(EthSrc)
	require.True(t, ok)
	assert.Equal(t, []byte(srcMAC), pred.Value)

	pred, ok = m.Get(IPv4Dst)
	require.True(t, ok)
	assert.Equal(t, []byte{10, 0, 0, 2}, pred.Value)

	assert.NoError(t, m.Validate())
}

func Test_ClassifyVlanARP(t *testing.T) {
	frame := serialize(t,
		&layers.Ethernet{SrcMAC: srcMAC, DstMAC: layers.EthernetBroadcast, EthernetType: layers.EthernetTypeDot1Q},
		&layers.Dot1Q{Priority: 3, VLANIdentifier: 100, Type: layers.EthernetTypeARP},
		&layers.ARP{
			AddrType:          layers.LinkTypeEthernet,
			Protocol:          layers.EthernetTypeIPv4,
			HwAddressSize:     6,
			ProtAddressSize:   4,
			Operation:         layers.ARPRequest,
			SourceHwAddress:   srcMAC,
			SourceProtAddress: []byte{10, 0, 0, 1},
			DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
			DstProtAddress:    []byte{10, 0, 0, 2},
		},
	)

	m := Classify(frame, 2, 7, 0xab)

	requireUint(t, m, InPort, 2)
	requireUint(t, m, InPhyPort, 7)
	requireUint(t, m, Metadata, 0xab)
	requireUint(t, m, EthType, EtherTypeARP)
	requireUint(t, m, VlanVid, 100|VlanPresent)
	requireUint(t, m, VlanPcp, 3)
	requireUint(t, m, ArpOp, 1)

	pred, ok := m.Get(ArpTpa)
	require.True(t, ok)
	assert.Equal(t, []byte{10, 0, 0, 2}, pred.Value)

	pred, ok = m.Get(ArpSha)
	require.True(t, ok)
	assert.Equal(t, []byte(srcMAC), pred.Value)

	assert.NoError(t, m.Validate())
}

func Test_ClassifyUDPv6(t *testing.T) {
	ip := &layers.IPv6{
		Version:      6,
		TrafficClass: 0x20,
		FlowLabel:    0x12345,
		NextHeader:   layers.IPProtocolUDP,
		HopLimit:     64,
		SrcIP:        net.ParseIP("fd00::1"),
		DstIP:        net.ParseIP("fd00::2"),
	}
	frame := serialize(t,
		&layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: layers.EthernetTypeIPv6},
		ip,
		&layers.UDP{SrcPort: 5353, DstPort: 53},
		gopacket.Payload([]byte("query")),
	)

	m := Classify(frame, 3, 3, 0)

	requireUint(t, m, EthType, EtherTypeIPv6)
	requireUint(t, m, IPDscp, 8)
	requireUint(t, m, IPProto, IPProtoUDP)
	requireUint(t, m, IPv6FLabel, 0x12345)
	requireUint(t, m, UDPSrc, 5353)
	requireUint(t, m, UDPDst, 53)

	pred, ok := m.Get(IPv6Dst)
	require.True(t, ok)
	assert.Equal(t, []byte(net.ParseIP("fd00::2")), pred.Value)

	assert.NoError(t, m.Validate())
}

func Test_ClassifyTruncated(t *testing.T) {
	frame := serialize(t,
		&layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: layers.EthernetTypeIPv4},
		&layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolUDP, SrcIP: net.IPv4(10, 0, 0, 1), DstIP: net.IPv4(10, 0, 0, 2)},
	)

	m := Classify(frame[:20], 1, 1, 0)

	requireUint(t, m, EthType, EtherTypeIPv4)
	assert.False(t, m.Has(IPv4Src))
	assert.False(t, m.Has(UDPSrc))
}

func Test_ClassifyIPv6ExtensionHeader(t *testing.T) {
	dst := &layers.IPv6Destination{
		Options: []*layers.IPv6DestinationOption{
			{OptionType: 1, OptionData: []byte{0, 0, 0, 0}},
		},
	}
	dst.NextHeader = layers.IPProtocolUDP

	frame := serialize(t,
		&layers.Ethernet{SrcMAC: srcMAC, DstMAC: dstMAC, EthernetType: layers.EthernetTypeIPv6},
		&layers.IPv6{
			Version:    6,
			NextHeader: layers.IPProtocolIPv6Destination,
			HopLimit:   64,
			SrcIP:      net.ParseIP("fd00::1"),
			DstIP:      net.ParseIP("fd00::2"),
		},
		dst,
		&layers.UDP{SrcPort: 5353, DstPort: 53},
		gopacket.Payload([]byte("query")),
	)

	m := Classify(frame, 3, 3, 0)

	requireUint(t, m, IPProto, IPProtoUDP)
	requireUint(t, m, UDPDst, 53)
	assert.NoError(t, m.Validate())
}

func Test_ClassifySkipsUnsettableFields(t *testing.T) {
	frame := serialize(t,
		&layers.Ethernet{SrcMAC: srcMAC, DstMAC: layers.EthernetBroadcast, EthernetType: layers.EthernetTypeARP},
		&layers.ARP{
			AddrType:          layers.LinkTypeEthernet,
			Protocol:          layers.EthernetTypeIPv6,
			HwAddressSize:     6,
			ProtAddressSize:   16,
			Operation:         layers.ARPRequest,
			SourceHwAddress:   srcMAC,
			SourceProtAddress: net.ParseIP("fd00::1"),
			DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
			DstProtAddress:    net.ParseIP("fd00::2"),
		},
	)

	m := Classify(frame, 1, 1, 0)

	requireUint(t, m, ArpOp, 1)
	assert.False(t, m.Has(ArpSpa))
	assert.False(t, m.Has(ArpTpa))
	assert.True(t, m.Has(ArpSha))
}
