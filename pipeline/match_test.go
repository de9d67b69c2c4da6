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

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MatchSet(t *testing.T) {
	tests := []struct {
		name     string
		field    MatchType
		value    []byte
		mask     []byte
		err      error
		present  bool
		wantMask []byte
	}{
		{
			name:    "exact eth_type",
			field:   EthType,
			value:   []byte{0x08, 0x00},
			present: true,
		},
		{
			name:    "all ones mask is stored as exact",
			field:   IPv4Dst,
			value:   []byte{10, 0, 0, 1},
			mask:    []byte{255, 255, 255, 255},
			present: true,
		},
		{
			name:    "all zero mask is don't care",
			field:   IPv4Dst,
			value:   []byte{0, 0, 0, 0},
			mask:    []byte{0, 0, 0, 0},
			present: false,
		},
		{
			name:     "partial mask",
			field:    IPv4Dst,
			value:    []byte{10, 0, 0, 0},
			mask:     []byte{255, 255, 255, 0},
			present:  true,
			wantMask: []byte{255, 255, 255, 0},
		},
		{
			name:  "value wider than field",
			field: EthType,
			value: []byte{0x08},
			err:   ErrFieldWidth,
		},
		{
			name:  "mask wider than field",
			field: IPv4Dst,
			value: []byte{10, 0, 0, 0},
			mask:  []byte{255, 255, 255},
			err:   ErrMaskWidth,
		},
		{
			name:  "mask on unmaskable field",
			field: InPort,
			value: []byte{0, 0, 1, 0},
			mask:  []byte{0, 0, 0xff, 0},
			err:   ErrNotMaskable,
		},
		{
			name:  "value outside mask",
			field: IPv4Dst,
			value: []byte{10, 0, 0, 1},
			mask:  []byte{255, 255, 255, 0},
			err:   ErrValueOutsideMask,
		},
		{
			name:  "unknown field",
			field: NumMatchTypes,
			value: []byte{0},
			err:   ErrUnknownField,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := NewMatch()
			err := m.Set(test.field, test.value, test.mask)
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				assert.Equal(t, 0, m.Len())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.present, m.Has(test.field))
			if !test.present {
				return
			}

			pred, ok := m.Get(test.field)
			require.True(t, ok)
			assert.Equal(t, test.value, pred.Value)
			assert.Equal(t, test.wantMask, pred.Mask)
		})
	}
}

func Test_MatchSetUint(t *testing.T) {
	m := NewMatch()
	require.NoError(t, m.SetUint(InPort, 3))
	require.NoError(t, m.SetUint(EthType, EtherTypeIPv4))

	v, ok := m.Uint(EthType)
	require.True(t, ok)
	assert.Equal(t, uint64(EtherTypeIPv4), v)

	assert.ErrorIs(t, m.SetUint(VlanPcp, 0x100), ErrFieldWidth)
	assert.ErrorIs(t, m.SetUint(IPv6Src, 1), ErrFieldWidth)

	_, ok = m.Uint(TCPDst)
	assert.False(t, ok)
}

func Test_MatchTypesAndBitmap(t *testing.T) {
	m := NewMatch()
	require.NoError(t, m.SetIP(IPv4Dst, net.ParseIP("10.0.0.1"), nil))
	require.NoError(t, m.SetUint(EthType, EtherTypeIPv4))
	require.NoError(t, m.SetUint(InPort, 3))

	assert.Equal(t, []MatchType{InPort, EthType, IPv4Dst}, m.Types())
	assert.Equal(t, uint64(1<<InPort|1<<EthType|1<<IPv4Dst), m.Bitmap())
	assert.Equal(t, 3, m.Len())

	m.Clear(EthType)
	assert.Equal(t, []MatchType{InPort, IPv4Dst}, m.Types())
	assert.False(t, m.Has(EthType))
}

func Test_MatchString(t *testing.T) {
	tests := []struct {
		name        string
		match       func(m *Match)
		matchString string
	}{
		{
			name:        "empty match",
			match:       func(m *Match) {},
			matchString: "",
		},
		{
			name: "in_port and eth_type",
			match: func(m *Match) {
				m.SetUint(InPort, 3)
				m.SetUint(EthType, EtherTypeIPv4)
			},
			matchString: "in_port=3 eth_type=0x800",
		},
		{
			name: "masked ipv4 destination",
			match: func(m *Match) {
				m.SetUint(EthType, EtherTypeIPv4)
				m.SetIP(IPv4Dst, net.ParseIP("10.0.0.0"), net.CIDRMask(24, 32))
			},
			matchString: "eth_type=0x800 ipv4_dst=10.0.0.0/255.255.255.0",
		},
		{
			name: "mac and tcp port",
			match: func(m *Match) {
				mac, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")
				m.SetMAC(EthDst, mac, nil)
				m.SetUint(TCPDst, 80)
			},
			matchString: "eth_dst=aa:bb:cc:dd:ee:ff tcp_dst=80",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := NewMatch()
			test.match(m)
			if m.String() != test.matchString {
				t.Logf("actual match: %q", m.String())
				t.Logf("expected match: %q", test.matchString)
				t.Error("unexpected match string")
			}
		})
	}
}

func Test_MatchClone(t *testing.T) {
	m := NewMatch()
	require.NoError(t, m.SetUint(EthType, EtherTypeIPv6))
	require.NoError(t, m.SetIP(IPv6Src, net.ParseIP("fd00::1"), nil))
	require.NoError(t, m.SetMaskedUint(Metadata, 0x10, 0xf0))

	c := m.Clone()
	if diff := cmp.Diff(m, c); diff != "" {
		t.Errorf("clone differs (-want +got):\n%s", diff)
	}

	c.Clear(Metadata)
	assert.False(t, m.Equal(c))
	assert.True(t, m.Has(Metadata))
}

func Test_MatchValidate(t *testing.T) {
	tests := []struct {
		name  string
		match func(m *Match)
		err   error
	}{
		{
			name: "tcp port with prerequisites",
			match: func(m *Match) {
				m.SetUint(EthType, EtherTypeIPv4)
				m.SetUint(IPProto, IPProtoTCP)
				m.SetUint(TCPDst, 80)
			},
		},
		{
			name: "tcp port without ip_proto",
			match: func(m *Match) {
				m.SetUint(EthType, EtherTypeIPv4)
				m.SetUint(TCPDst, 80)
			},
			err: ErrPrerequisite,
		},
		{
			name: "udp port with tcp ip_proto",
			match: func(m *Match) {
				m.SetUint(EthType, EtherTypeIPv6)
				m.SetUint(IPProto, IPProtoTCP)
				m.SetUint(UDPDst, 53)
			},
			err: ErrPrerequisite,
		},
		{
			name: "ipv4 address with ipv6 eth_type",
			match: func(m *Match) {
				m.SetUint(EthType, EtherTypeIPv6)
				m.SetIP(IPv4Src, net.ParseIP("10.0.0.1"), nil)
			},
			err: ErrPrerequisite,
		},
		{
			name: "ip_proto with arp eth_type",
			match: func(m *Match) {
				m.SetUint(EthType, EtherTypeARP)
				m.SetUint(IPProto, IPProtoUDP)
			},
			err: ErrPrerequisite,
		},
		{
			name: "neighbor solicitation target",
			match: func(m *Match) {
				m.SetUint(EthType, EtherTypeIPv6)
				m.SetUint(IPProto, IPProtoICMPv6)
				m.SetUint(ICMPv6Type, 135)
				m.SetIP(IPv6NdTarget, net.ParseIP("fd00::2"), nil)
			},
		},
		{
			name: "nd_tll on a solicitation",
			match: func(m *Match) {
				mac, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")
				m.SetUint(EthType, EtherTypeIPv6)
				m.SetUint(IPProto, IPProtoICMPv6)
				m.SetUint(ICMPv6Type, 135)
				m.SetMAC(IPv6NdTll, mac, nil)
			},
			err: ErrPrerequisite,
		},
		{
			name: "vlan_pcp without a tag",
			match: func(m *Match) {
				m.SetUint(VlanVid, 5)
				m.SetUint(VlanPcp, 3)
			},
			err: ErrPrerequisite,
		},
		{
			name: "vlan_pcp with a tag",
			match: func(m *Match) {
				m.SetUint(VlanVid, 5|VlanPresent)
				m.SetUint(VlanPcp, 3)
			},
		},
		{
			name: "fields without prerequisites",
			match: func(m *Match) {
				m.SetUint(InPort, 1)
				m.SetUint(EthType, EtherTypeIPv4)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := NewMatch()
			test.match(m)

			err := m.Validate()
			if test.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, test.err)
		})
	}
}
