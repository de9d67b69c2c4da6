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
	"bytes"
	"encoding/binary"
	"fmt"
	"math/bits"
	"net"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnknownField     = errors.New("unknown match field")
	ErrFieldWidth       = errors.New("value does not match field width")
	ErrMaskWidth        = errors.New("mask does not match field width")
	ErrNotMaskable      = errors.New("field cannot be masked")
	ErrValueOutsideMask = errors.New("value has bits set outside of mask")
)

// MatchType enumerates the header and pipeline fields a flow entry can match
// on. Bit i of a match bitmap stands for MatchType(i).
type MatchType uint8

const (
	InPort MatchType = iota
	InPhyPort
	Metadata
	EthDst
	EthSrc
	EthType
	VlanVid
	VlanPcp
	MplsLabel
	MplsTC
	MplsBos
	ArpOp
	ArpSpa
	ArpTpa
	ArpSha
	ArpTha
	IPDscp
	IPEcn
	IPProto
	IPv4Src
	IPv4Dst
	IPv6Src
	IPv6Dst
	IPv6FLabel
	IPv6NdTarget
	IPv6NdSll
	IPv6NdTll
	IPv6ExtHdr
	TCPSrc
	TCPDst
	UDPSrc
	UDPDst
	SCTPSrc
	SCTPDst
	ICMPv4Type
	ICMPv4Code
	ICMPv6Type
	ICMPv6Code
	PbbIsid
	TunnelID

	NumMatchTypes
)

type format int

const (
	formatDecimal format = iota
	formatHex
	formatMAC
	formatIP
)

type fieldInfo struct {
	name     string
	width    int
	maskable bool
	settable bool
	format   format
}

var fields = [NumMatchTypes]fieldInfo{
	InPort:       {name: "in_port", width: 4},
	InPhyPort:    {name: "in_phy_port", width: 4},
	Metadata:     {name: "metadata", width: 8, maskable: true, format: formatHex},
	EthDst:       {name: "eth_dst", width: 6, maskable: true, settable: true, format: formatMAC},
	EthSrc:       {name: "eth_src", width: 6, maskable: true, settable: true, format: formatMAC},
	EthType:      {name: "eth_type", width: 2, settable: true, format: formatHex},
	VlanVid:      {name: "vlan_vid", width: 2, maskable: true, settable: true, format: formatHex},
	VlanPcp:      {name: "vlan_pcp", width: 1, settable: true},
	MplsLabel:    {name: "mpls_label", width: 4, settable: true},
	MplsTC:       {name: "mpls_tc", width: 1, settable: true},
	MplsBos:      {name: "mpls_bos", width: 1, settable: true},
	ArpOp:        {name: "arp_op", width: 2, settable: true},
	ArpSpa:       {name: "arp_spa", width: 4, maskable: true, settable: true, format: formatIP},
	ArpTpa:       {name: "arp_tpa", width: 4, maskable: true, settable: true, format: formatIP},
	ArpSha:       {name: "arp_sha", width: 6, settable: true, format: formatMAC},
	ArpTha:       {name: "arp_tha", width: 6, settable: true, format: formatMAC},
	IPDscp:       {name: "ip_dscp", width: 1, settable: true},
	IPEcn:        {name: "ip_ecn", width: 1, settable: true},
	IPProto:      {name: "ip_proto", width: 1, settable: true},
	IPv4Src:      {name: "ipv4_src", width: 4, maskable: true, settable: true, format: formatIP},
	IPv4Dst:      {name: "ipv4_dst", width: 4, maskable: true, settable: true, format: formatIP},
	IPv6Src:      {name: "ipv6_src", width: 16, maskable: true, settable: true, format: formatIP},
	IPv6Dst:      {name: "ipv6_dst", width: 16, maskable: true, settable: true, format: formatIP},
	IPv6FLabel:   {name: "ipv6_label", width: 4, maskable: true, settable: true, format: formatHex},
	IPv6NdTarget: {name: "nd_target", width: 16, settable: true, format: formatIP},
	IPv6NdSll:    {name: "nd_sll", width: 6, settable: true, format: formatMAC},
	IPv6NdTll:    {name: "nd_tll", width: 6, settable: true, format: formatMAC},
	IPv6ExtHdr:   {name: "ipv6_exthdr", width: 2, maskable: true, format: formatHex},
	TCPSrc:       {name: "tcp_src", width: 2, settable: true},
	TCPDst:       {name: "tcp_dst", width: 2, settable: true},
	UDPSrc:       {name: "udp_src", width: 2, settable: true},
	UDPDst:       {name: "udp_dst", width: 2, settable: true},
	SCTPSrc:      {name: "sctp_src", width: 2, settable: true},
	SCTPDst:      {name: "sctp_dst", width: 2, settable: true},
	ICMPv4Type:   {name: "icmp_type", width: 1, settable: true},
	ICMPv4Code:   {name: "icmp_code", width: 1, settable: true},
	ICMPv6Type:   {name: "icmpv6_type", width: 1, settable: true},
	ICMPv6Code:   {name: "icmpv6_code", width: 1, settable: true},
	PbbIsid:      {name: "pbb_isid", width: 3, maskable: true, settable: true, format: formatHex},
	TunnelID:     {name: "tun_id", width: 8, maskable: true, settable: true, format: formatHex},
}

func (t MatchType) Valid() bool {
	return t < NumMatchTypes
}

func (t MatchType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("MatchType(%d)", uint8(t))
	}
	return fields[t].name
}

// Width is the size in bytes of the field value.
func (t MatchType) Width() int {
	if !t.Valid() {
		return 0
	}
	return fields[t].width
}

func (t MatchType) Maskable() bool {
	return t.Valid() && fields[t].maskable
}

// Settable reports whether a set-field action may rewrite the field.
func (t MatchType) Settable() bool {
	return t.Valid() && fields[t].settable
}

// Predicate is the value and optional mask of one present match field.
// A nil Mask is an exact match.
type Predicate struct {
	Value []byte
	Mask  []byte
}

func (p Predicate) Masked() bool {
	return p.Mask != nil
}

// Match is the set of predicates of a flow entry. Fields that are not
// present are wildcarded.
type Match struct {
	present uint64
	preds   [NumMatchTypes]Predicate
}

func NewMatch() *Match {
	return &Match{}
}

// Set stores a predicate for t. An all ones mask is stored as an exact
// match and an all zero mask removes the field.
func (m *Match) Set(t MatchType, value, mask []byte) error {
	if !t.Valid() {
		return errors.Wrapf(ErrUnknownField, "field %d", uint8(t))
	}

	info := fields[t]
	if len(value) != info.width {
		return errors.Wrapf(ErrFieldWidth, "%s: %d bytes, want %d", info.name, len(value), info.width)
	}

	if mask != nil {
		if len(mask) != info.width {
			return errors.Wrapf(ErrMaskWidth, "%s: %d bytes, want %d", info.name, len(mask), info.width)
		}

		switch {
		case allOnes(mask):
			mask = nil
		case allZeros(mask):
			m.Clear(t)
			return nil
		case !info.maskable:
			return errors.Wrap(ErrNotMaskable, info.name)
		}
	}

	if mask != nil {
		for i := range value {
			if value[i]&^mask[i] != 0 {
				return errors.Wrap(ErrValueOutsideMask, info.name)
			}
		}
	}

	pred := Predicate{Value: append([]byte(nil), value...)}
	if mask != nil {
		pred.Mask = append([]byte(nil), mask...)
	}

	m.preds[t] = pred
	m.present |= 1 << t
	return nil
}

// SetUint stores an exact predicate for a field of at most 8 bytes.
func (m *Match) SetUint(t MatchType, v uint64) error {
	if !t.Valid() {
		return errors.Wrapf(ErrUnknownField, "field %d", uint8(t))
	}

	width := fields[t].width
	if width > 8 {
		return errors.Wrapf(ErrFieldWidth, "%s is not an integer field", fields[t].name)
	}
	if width < 8 && v>>(8*uint(width)) != 0 {
		return errors.Wrapf(ErrFieldWidth, "%s: value %#x too large", fields[t].name, v)
	}

	return m.Set(t, uintBytes(v, width), nil)
}

// SetMaskedUint stores a masked predicate for a field of at most 8 bytes.
func (m *Match) SetMaskedUint(t MatchType, v, mask uint64) error {
	if !t.Valid() {
		return errors.Wrapf(ErrUnknownField, "field %d", uint8(t))
	}

	width := fields[t].width
	if width > 8 {
		return errors.Wrapf(ErrFieldWidth, "%s is not an integer field", fields[t].name)
	}

	return m.Set(t, uintBytes(v, width), uintBytes(mask, width))
}

// SetIP stores an address predicate. ip is converted to the width of the
// field, a nil mask is an exact match.
func (m *Match) SetIP(t MatchType, ip net.IP, mask net.IPMask) error {
	value := []byte(ip.To16())
	if t.Width() == net.IPv4len {
		value = ip.To4()
	}
	if value == nil {
		return errors.Wrapf(ErrFieldWidth, "%s: invalid address %v", t, ip)
	}

	return m.Set(t, value, mask)
}

func (m *Match) SetMAC(t MatchType, mac, mask net.HardwareAddr) error {
	return m.Set(t, mac, mask)
}

func (m *Match) Get(t MatchType) (Predicate, bool) {
	if !m.Has(t) {
		return Predicate{}, false
	}
	return m.preds[t], true
}

// Uint returns the value of an integer field.
func (m *Match) Uint(t MatchType) (uint64, bool) {
	pred, ok := m.Get(t)
	if !ok || len(pred.Value) > 8 {
		return 0, false
	}

	var buf [8]byte
	copy(buf[8-len(pred.Value):], pred.Value)
	return binary.BigEndian.Uint64(buf[:]), true
}

func (m *Match) Has(t MatchType) bool {
	return t.Valid() && m.present&(1<<t) != 0
}

func (m *Match) Clear(t MatchType) {
	if !t.Valid() {
		return
	}
	m.present &^= 1 << t
	m.preds[t] = Predicate{}
}

func (m *Match) Len() int {
	return bits.OnesCount64(m.present)
}

// Types returns the present fields in ascending MatchType order.
func (m *Match) Types() []MatchType {
	var types []MatchType
	for t := MatchType(0); t < NumMatchTypes; t++ {
		if m.Has(t) {
			types = append(types, t)
		}
	}
	return types
}

// Bitmap has bit t set for every present field t.
func (m *Match) Bitmap() uint64 {
	return m.present
}

func (m *Match) Clone() *Match {
	c := NewMatch()
	for _, t := range m.Types() {
		pred := m.preds[t]
		c.Set(t, pred.Value, pred.Mask)
	}
	return c
}

func (m *Match) Equal(o *Match) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.present != o.present {
		return false
	}

	for _, t := range m.Types() {
		a, b := m.preds[t], o.preds[t]
		if !bytes.Equal(a.Value, b.Value) || !bytes.Equal(a.Mask, b.Mask) {
			return false
		}
	}
	return true
}

func (m *Match) String() string {
	var parts []string
	for _, t := range m.Types() {
		parts = append(parts, fmt.Sprintf("%s=%s", t, formatPredicate(t, m.preds[t])))
	}
	return strings.Join(parts, " ")
}

func formatPredicate(t MatchType, p Predicate) string {
	value := formatValue(t, p.Value)
	if p.Mask == nil {
		return value
	}
	return fmt.Sprintf("%s/%s", value, formatValue(t, p.Mask))
}

func formatValue(t MatchType, b []byte) string {
	switch fields[t].format {
	case formatMAC:
		return net.HardwareAddr(b).String()
	case formatIP:
		return net.IP(b).String()
	case formatHex:
		return fmt.Sprintf("%#x", beUint(b))
	default:
		return fmt.Sprintf("%d", beUint(b))
	}
}

func beUint(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func uintBytes(v uint64, width int) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append([]byte(nil), buf[8-width:]...)
}

func allOnes(b []byte) bool {
	for _, c := range b {
		if c != 0xff {
			return false
		}
	}
	return true
}

func allZeros(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
