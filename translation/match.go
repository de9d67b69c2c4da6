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
	"encoding/binary"
	"net"

	"github.com/Kmotiko/gofc/ofprotocol/ofp13"
	"github.com/pkg/errors"

	"github.com/k-vswitch/softswitch/pipeline"
)

// fieldCodec maps one OXM basic field to its pipeline match type.
type fieldCodec struct {
	oxm     uint32
	field   pipeline.MatchType
	header  uint32
	headerW uint32
	since   uint8
	encode  func(header uint32, value, mask []byte) ofp13.OxmField
}

var fieldCodecs = []*fieldCodec{
	{ofp13.OFPXMT_OFB_IN_PORT, pipeline.InPort, ofp13.OXM_OF_IN_PORT, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmInPort{TlvHeader: h, Value: u32(v)} }},
	{ofp13.OFPXMT_OFB_IN_PHY_PORT, pipeline.InPhyPort, ofp13.OXM_OF_IN_PHY_PORT, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmInPhyPort{TlvHeader: h, Value: u32(v)} }},
	{ofp13.OFPXMT_OFB_METADATA, pipeline.Metadata, ofp13.OXM_OF_METADATA, ofp13.OXM_OF_METADATA_W, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField {
			return &ofp13.OxmMetadata{TlvHeader: h, Value: u64(v), Mask: u64(m)}
		}},
	{ofp13.OFPXMT_OFB_ETH_DST, pipeline.EthDst, ofp13.OXM_OF_ETH_DST, ofp13.OXM_OF_ETH_DST_W, Version12, encodeEth},
	{ofp13.OFPXMT_OFB_ETH_SRC, pipeline.EthSrc, ofp13.OXM_OF_ETH_SRC, ofp13.OXM_OF_ETH_SRC_W, Version12, encodeEth},
	{ofp13.OFPXMT_OFB_ETH_TYPE, pipeline.EthType, ofp13.OXM_OF_ETH_TYPE, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmEthType{TlvHeader: h, Value: u16(v)} }},
	{ofp13.OFPXMT_OFB_VLAN_VID, pipeline.VlanVid, ofp13.OXM_OF_VLAN_VID, ofp13.OXM_OF_VLAN_VID_W, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField {
			return &ofp13.OxmVlanVid{TlvHeader: h, Value: u16(v), Mask: u16(m)}
		}},
	{ofp13.OFPXMT_OFB_VLAN_PCP, pipeline.VlanPcp, ofp13.OXM_OF_VLAN_PCP, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmVlanPcp{TlvHeader: h, Value: u8(v)} }},
	{ofp13.OFPXMT_OFB_IP_DSCP, pipeline.IPDscp, ofp13.OXM_OF_IP_DSCP, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmIpDscp{TlvHeader: h, Value: u8(v)} }},
	{ofp13.OFPXMT_OFB_IP_ECN, pipeline.IPEcn, ofp13.OXM_OF_IP_ECN, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmIpEcn{TlvHeader: h, Value: u8(v)} }},
	{ofp13.OFPXMT_OFB_IP_PROTO, pipeline.IPProto, ofp13.OXM_OF_IP_PROTO, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmIpProto{TlvHeader: h, Value: u8(v)} }},
	{ofp13.OFPXMT_OFB_IPV4_SRC, pipeline.IPv4Src, ofp13.OXM_OF_IPV4_SRC, ofp13.OXM_OF_IPV4_SRC_W, Version12, encodeIPv4},
	{ofp13.OFPXMT_OFB_IPV4_DST, pipeline.IPv4Dst, ofp13.OXM_OF_IPV4_DST, ofp13.OXM_OF_IPV4_DST_W, Version12, encodeIPv4},
	{ofp13.OFPXMT_OFB_TCP_SRC, pipeline.TCPSrc, ofp13.OXM_OF_TCP_SRC, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return ofp13.NewOxmTcp(h, u16(v)) }},
	{ofp13.OFPXMT_OFB_TCP_DST, pipeline.TCPDst, ofp13.OXM_OF_TCP_DST, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return ofp13.NewOxmTcp(h, u16(v)) }},
	{ofp13.OFPXMT_OFB_UDP_SRC, pipeline.UDPSrc, ofp13.OXM_OF_UDP_SRC, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return ofp13.NewOxmUdp(h, u16(v)) }},
	{ofp13.OFPXMT_OFB_UDP_DST, pipeline.UDPDst, ofp13.OXM_OF_UDP_DST, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return ofp13.NewOxmUdp(h, u16(v)) }},
	{ofp13.OFPXMT_OFB_SCTP_SRC, pipeline.SCTPSrc, ofp13.OXM_OF_SCTP_SRC, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return ofp13.NewOxmSctp(h, u16(v)) }},
	{ofp13.OFPXMT_OFB_SCTP_DST, pipeline.SCTPDst, ofp13.OXM_OF_SCTP_DST, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return ofp13.NewOxmSctp(h, u16(v)) }},
	{ofp13.OFPXMT_OFB_ICMPV4_TYPE, pipeline.ICMPv4Type, ofp13.OXM_OF_ICMPV4_TYPE, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmIcmpType{TlvHeader: h, Value: u8(v)} }},
	{ofp13.OFPXMT_OFB_ICMPV4_CODE, pipeline.ICMPv4Code, ofp13.OXM_OF_ICMPV4_CODE, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmIcmpCode{TlvHeader: h, Value: u8(v)} }},
	{ofp13.OFPXMT_OFB_ARP_OP, pipeline.ArpOp, ofp13.OXM_OF_ARP_OP, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmArpOp{TlvHeader: h, Value: u16(v)} }},
	{ofp13.OFPXMT_OFB_ARP_SPA, pipeline.ArpSpa, ofp13.OXM_OF_ARP_SPA, ofp13.OXM_OF_ARP_SPA_W, Version12, encodeArpPa},
	{ofp13.OFPXMT_OFB_ARP_TPA, pipeline.ArpTpa, ofp13.OXM_OF_ARP_TPA, ofp13.OXM_OF_ARP_TPA_W, Version12, encodeArpPa},
	{ofp13.OFPXMT_OFB_ARP_SHA, pipeline.ArpSha, ofp13.OXM_OF_ARP_SHA, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmArpHa{TlvHeader: h, Value: mac(v)} }},
	{ofp13.OFPXMT_OFB_ARP_THA, pipeline.ArpTha, ofp13.OXM_OF_ARP_THA, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmArpHa{TlvHeader: h, Value: mac(v)} }},
	{ofp13.OFPXMT_OFB_IPV6_SRC, pipeline.IPv6Src, ofp13.OXM_OF_IPV6_SRC, ofp13.OXM_OF_IPV6_SRC_W, Version12, encodeIPv6},
	{ofp13.OFPXMT_OFB_IPV6_DST, pipeline.IPv6Dst, ofp13.OXM_OF_IPV6_DST, ofp13.OXM_OF_IPV6_DST_W, Version12, encodeIPv6},
	{ofp13.OFPXMT_OFB_IPV6_FLABEL, pipeline.IPv6FLabel, ofp13.OXM_OF_IPV6_FLABEL, ofp13.OXM_OF_IPV6_FLABEL_W, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField {
			return &ofp13.OxmIpv6FLabel{TlvHeader: h, Value: u32(v), Mask: u32(m)}
		}},
	{ofp13.OFPXMT_OFB_ICMPV6_TYPE, pipeline.ICMPv6Type, ofp13.OXM_OF_ICMPV6_TYPE, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmIcmpv6Type{TlvHeader: h, Value: u8(v)} }},
	{ofp13.OFPXMT_OFB_ICMPV6_CODE, pipeline.ICMPv6Code, ofp13.OXM_OF_ICMPV6_CODE, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmIcmpv6Code{TlvHeader: h, Value: u8(v)} }},
	{ofp13.OFPXMT_OFB_IPV6_ND_TARGET, pipeline.IPv6NdTarget, ofp13.OXM_OF_IPV6_ND_TARGET, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField {
			return &ofp13.OxmIpv6NdTarget{TlvHeader: h, Value: net.IP(clone(v))}
		}},
	{ofp13.OFPXMT_OFB_IPV6_ND_SLL, pipeline.IPv6NdSll, ofp13.OXM_OF_IPV6_ND_SLL, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmIpv6NdSll{TlvHeader: h, Value: mac(v)} }},
	{ofp13.OFPXMT_OFB_IPV6_ND_TLL, pipeline.IPv6NdTll, ofp13.OXM_OF_IPV6_ND_TLL, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmIpv6NdTll{TlvHeader: h, Value: mac(v)} }},
	{ofp13.OFPXMT_OFB_MPLS_LABEL, pipeline.MplsLabel, ofp13.OXM_OF_MPLS_LABEL, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmMplsLabel{TlvHeader: h, Value: u32(v)} }},
	{ofp13.OFPXMT_OFB_MPLS_TC, pipeline.MplsTC, ofp13.OXM_OF_MPLS_TC, 0, Version12,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmMplsTc{TlvHeader: h, Value: u8(v)} }},
	{ofp13.OFPXMT_OFB_MPLS_BOS, pipeline.MplsBos, ofp13.OXM_OF_MPLS_BOS, 0, Version13,
		func(h uint32, v, m []byte) ofp13.OxmField { return &ofp13.OxmMplsBos{TlvHeader: h, Value: u8(v)} }},
	{ofp13.OFPXMT_OFB_PBB_ISID, pipeline.PbbIsid, ofp13.OXM_OF_PBB_ISID, ofp13.OXM_OF_PBB_ISID_W, Version13,
		func(h uint32, v, m []byte) ofp13.OxmField {
			f := &ofp13.OxmPbbIsid{TlvHeader: h}
			copy(f.Value[:], v)
			copy(f.Mask[:], m)
			return f
		}},
	{ofp13.OFPXMT_OFB_TUNNEL_ID, pipeline.TunnelID, ofp13.OXM_OF_TUNNEL_ID, ofp13.OXM_OF_TUNNEL_ID_W, Version13,
		func(h uint32, v, m []byte) ofp13.OxmField {
			return &ofp13.OxmTunnelId{TlvHeader: h, Value: u64(v), Mask: u64(m)}
		}},
	{ofp13.OFPXMT_OFB_IPV6_EXTHDR, pipeline.IPv6ExtHdr, ofp13.OXM_OF_IPV6_EXTHDR, ofp13.OXM_OF_IPV6_EXTHDR_W, Version13,
		func(h uint32, v, m []byte) ofp13.OxmField {
			return &ofp13.OxmIpv6ExtHeader{TlvHeader: h, Value: u16(v), Mask: u16(m)}
		}},
}

func encodeEth(h uint32, v, m []byte) ofp13.OxmField {
	return &ofp13.OxmEth{TlvHeader: h, Value: mac(v), Mask: mac(m)}
}

// IPv4 values are handed to the wire in 16 byte form, which is what the
// OXM serializers index into.
func encodeIPv4(h uint32, v, m []byte) ofp13.OxmField {
	return &ofp13.OxmIpv4{TlvHeader: h, Value: net.IP(clone(v)).To16(), Mask: net.IPMask(clone(m))}
}

func encodeArpPa(h uint32, v, m []byte) ofp13.OxmField {
	return &ofp13.OxmArpPa{TlvHeader: h, Value: net.IP(clone(v)).To16(), Mask: net.IPMask(clone(m))}
}

func encodeIPv6(h uint32, v, m []byte) ofp13.OxmField {
	return &ofp13.OxmIpv6{TlvHeader: h, Value: net.IP(clone(v)), Mask: net.IPMask(clone(m))}
}

// oxmValue returns the value and mask of f in network byte order, sized to
// the pipeline field width.
func oxmValue(f ofp13.OxmField) (value, mask []byte, ok bool) {
	switch o := f.(type) {
	case *ofp13.OxmInPort:
		return be32(o.Value), nil, true
	case *ofp13.OxmInPhyPort:
		return be32(o.Value), nil, true
	case *ofp13.OxmMetadata:
		return be64(o.Value), be64(o.Mask), true
	case *ofp13.OxmEth:
		return clone(o.Value), clone(o.Mask), true
	case *ofp13.OxmEthType:
		return be16(o.Value), nil, true
	case *ofp13.OxmVlanVid:
		return be16(o.Value), be16(o.Mask), true
	case *ofp13.OxmVlanPcp:
		return []byte{o.Value}, nil, true
	case *ofp13.OxmIpDscp:
		return []byte{o.Value}, nil, true
	case *ofp13.OxmIpEcn:
		return []byte{o.Value}, nil, true
	case *ofp13.OxmIpProto:
		return []byte{o.Value}, nil, true
	case *ofp13.OxmIpv4:
		return ipv4Bytes(o.Value), ipv4Mask(o.Mask), true
	case *ofp13.OxmTcp:
		return be16(o.Value), nil, true
	case *ofp13.OxmUdp:
		return be16(o.Value), nil, true
	case *ofp13.OxmSctp:
		return be16(o.Value), nil, true
	case *ofp13.OxmIcmpType:
		return []byte{o.Value}, nil, true
	case *ofp13.OxmIcmpCode:
		return []byte{o.Value}, nil, true
	case *ofp13.OxmArpOp:
		return be16(o.Value), nil, true
	case *ofp13.OxmArpPa:
		return ipv4Bytes(o.Value), ipv4Mask(o.Mask), true
	case *ofp13.OxmArpHa:
		return clone(o.Value), nil, true
	case *ofp13.OxmIpv6:
		return clone(o.Value.To16()), clone(o.Mask), true
	case *ofp13.OxmIpv6FLabel:
		return be32(o.Value), be32(o.Mask), true
	case *ofp13.OxmIcmpv6Type:
		return []byte{o.Value}, nil, true
	case *ofp13.OxmIcmpv6Code:
		return []byte{o.Value}, nil, true
	case *ofp13.OxmIpv6NdTarget:
		return clone(o.Value.To16()), nil, true
	case *ofp13.OxmIpv6NdSll:
		return clone(o.Value), nil, true
	case *ofp13.OxmIpv6NdTll:
		return clone(o.Value), nil, true
	case *ofp13.OxmMplsLabel:
		return be32(o.Value), nil, true
	case *ofp13.OxmMplsTc:
		return []byte{o.Value}, nil, true
	case *ofp13.OxmMplsBos:
		return []byte{o.Value}, nil, true
	case *ofp13.OxmPbbIsid:
		return clone(o.Value[:]), clone(o.Mask[:]), true
	case *ofp13.OxmTunnelId:
		return be64(o.Value), be64(o.Mask), true
	case *ofp13.OxmIpv6ExtHeader:
		return be16(o.Value), be16(o.Mask), true
	default:
		return nil, nil, false
	}
}

// fieldCodecFor finds the codec of a wire field for the negotiated version.
func (t *Translator) fieldCodecFor(f ofp13.OxmField) (*fieldCodec, error) {
	if f.OxmClass() != ofp13.OFPXMC_OPENFLOW_BASIC {
		return nil, unsupported(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_FIELD,
			"oxm class %#x", f.OxmClass())
	}

	codec, ok := t.fields[f.OxmField()]
	if !ok {
		return nil, unsupported(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_FIELD,
			"oxm field %d in version %#x", f.OxmField(), t.version)
	}
	return codec, nil
}

func (c *fieldCodec) decode(f ofp13.OxmField) (value, mask []byte, err error) {
	hasMask := f.OxmHasMask() == 1
	if hasMask && c.headerW == 0 {
		return nil, nil, malformed(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_MASK,
			"%s cannot be masked", c.field)
	}

	length := c.field.Width()
	if hasMask {
		length *= 2
	}
	if int(f.Length()) != length {
		return nil, nil, malformed(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_LEN,
			"%s: oxm length %d, want %d", c.field, f.Length(), length)
	}

	value, mask, ok := oxmValue(f)
	if !ok {
		return nil, nil, malformed(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_VALUE,
			"%s: unexpected field %T", c.field, f)
	}
	if !hasMask {
		return value, nil, nil
	}
	// a masked header must carry a mask as wide as the field
	if len(mask) != c.field.Width() {
		return nil, nil, malformed(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_MASK,
			"%s: mask of %d bytes, want %d", c.field, len(mask), c.field.Width())
	}
	return value, mask, nil
}

func (c *fieldCodec) encodeField(pred pipeline.Predicate) (ofp13.OxmField, error) {
	if !pred.Masked() {
		return c.encode(c.header, pred.Value, nil), nil
	}
	if c.headerW == 0 {
		return nil, malformed(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_MASK,
			"%s cannot be masked", c.field)
	}
	return c.encode(c.headerW, pred.Value, pred.Mask), nil
}

// ToPipelineMatch translates a wire match. Fields with an all zero mask are
// treated as absent.
func (t *Translator) ToPipelineMatch(wire *ofp13.OfpMatch) (*pipeline.Match, error) {
	if wire == nil {
		return nil, malformed(ofp13.OFPET_BAD_REQUEST, ofp13.OFPBRC_BAD_LEN, "missing match")
	}
	if wire.Type != ofp13.OFPMT_OXM {
		return nil, unsupported(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_TYPE, "match type %d", wire.Type)
	}

	m := pipeline.NewMatch()
	var seen uint64

	for _, f := range wire.OxmFields {
		if f == nil {
			return nil, malformed(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_LEN, "empty match field")
		}

		codec, err := t.fieldCodecFor(f)
		if err != nil {
			return nil, err
		}

		bit := uint64(1) << codec.field
		if seen&bit != 0 {
			return nil, malformed(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_DUP_FIELD, "duplicate %s", codec.field)
		}
		seen |= bit

		value, mask, err := codec.decode(f)
		if err != nil {
			return nil, err
		}

		if err := m.Set(codec.field, value, mask); err != nil {
			return nil, matchError(err)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, malformed(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_PREREQ, "%v", err)
	}

	return m, nil
}

// ToWireMatch translates a pipeline match into an OXM match.
func (t *Translator) ToWireMatch(m *pipeline.Match) (*ofp13.OfpMatch, error) {
	fields, err := t.toWireFields(m)
	if err != nil {
		return nil, err
	}

	wire := ofp13.NewOfpMatch()
	for _, f := range fields {
		wire.Append(f)
	}
	return wire, nil
}

// ToWireMatches returns the match fields of entry in ascending OXM field
// order. Only present fields are emitted.
func (t *Translator) ToWireMatches(entry *pipeline.FlowEntry) ([]ofp13.OxmField, error) {
	return t.toWireFields(entry.Match)
}

func (t *Translator) toWireFields(m *pipeline.Match) ([]ofp13.OxmField, error) {
	fields := make([]ofp13.OxmField, 0)
	if m == nil {
		return fields, nil
	}

	if extra := m.Bitmap() &^ t.matchTypes; extra != 0 {
		for _, mt := range m.Types() {
			if extra&(1<<mt) != 0 {
				return nil, unsupported(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_FIELD,
					"%s in version %#x", mt, t.version)
			}
		}
	}

	for _, codec := range t.fieldOrder {
		pred, ok := m.Get(codec.field)
		if !ok {
			continue
		}

		f, err := codec.encodeField(pred)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	return fields, nil
}

func matchError(err error) error {
	switch errors.Cause(err) {
	case pipeline.ErrValueOutsideMask:
		return malformed(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_WILDCARDS, "%v", err)
	case pipeline.ErrNotMaskable:
		return malformed(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_MASK, "%v", err)
	case pipeline.ErrFieldWidth, pipeline.ErrMaskWidth:
		return malformed(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_LEN, "%v", err)
	case pipeline.ErrUnknownField:
		return unsupported(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_FIELD, "%v", err)
	default:
		return malformed(ofp13.OFPET_BAD_MATCH, ofp13.OFPBMC_BAD_VALUE, "%v", err)
	}
}

func be16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func be64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func ipv4Bytes(ip net.IP) []byte {
	if v4 := ip.To4(); v4 != nil {
		return clone(v4)
	}
	return clone(ip)
}

func ipv4Mask(mask net.IPMask) []byte {
	if len(mask) == net.IPv6len {
		return clone(mask[12:])
	}
	return clone(mask)
}

// The integer helpers read a zero value from a nil slice, which is what an
// unmasked field passes as its mask.
func u8(b []byte) uint8 {
	if len(b) < 1 {
		return 0
	}
	return b[0]
}

func u16(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func u32(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func u64(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func mac(b []byte) net.HardwareAddr {
	if b == nil {
		return nil
	}
	return net.HardwareAddr(clone(b))
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
