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
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"k8s.io/klog"
)

// Classify builds the exact match describing frame as received on inPort.
// Only the outermost VLAN tag and MPLS label are reported. Fields of layers
// that fail to decode are left out.
func Classify(frame []byte, inPort, inPhyPort uint32, metadata uint64) *Match {
	c := &classifier{m: NewMatch()}
	c.setUint(InPort, uint64(inPort))
	if inPhyPort != inPort {
		c.setUint(InPhyPort, uint64(inPhyPort))
	}
	if metadata != 0 {
		c.setUint(Metadata, metadata)
	}

	packet := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.NoCopy)

	for _, layer := range packet.Layers() {
		switch l := layer.(type) {
		case *layers.Ethernet:
			c.setAddr(EthDst, l.DstMAC)
			c.setAddr(EthSrc, l.SrcMAC)
			c.setUint(EthType, uint64(l.EthernetType))

		case *layers.Dot1Q:
			if !c.m.Has(VlanVid) {
				c.setUint(VlanVid, uint64(l.VLANIdentifier)|VlanPresent)
				c.setUint(VlanPcp, uint64(l.Priority))
			}
			c.setUint(EthType, uint64(l.Type))

		case *layers.MPLS:
			if !c.m.Has(MplsLabel) {
				c.setUint(MplsLabel, uint64(l.Label))
				c.setUint(MplsTC, uint64(l.TrafficClass))
				c.setUint(MplsBos, boolUint(l.StackBottom))
			}

		case *layers.ARP:
			c.setUint(ArpOp, uint64(l.Operation))
			c.setAddr(ArpSpa, l.SourceProtAddress)
			c.setAddr(ArpTpa, l.DstProtAddress)
			c.setAddr(ArpSha, l.SourceHwAddress)
			c.setAddr(ArpTha, l.DstHwAddress)

		case *layers.IPv4:
			c.setUint(IPDscp, uint64(l.TOS>>2))
			c.setUint(IPEcn, uint64(l.TOS&0x3))
			c.setUint(IPProto, uint64(l.Protocol))
			c.setAddr(IPv4Src, l.SrcIP.To4())
			c.setAddr(IPv4Dst, l.DstIP.To4())

		case *layers.IPv6:
			c.setUint(IPDscp, uint64(l.TrafficClass>>2))
			c.setUint(IPEcn, uint64(l.TrafficClass&0x3))
			c.setUint(IPProto, uint64(l.NextHeader))
			c.setAddr(IPv6Src, l.SrcIP.To16())
			c.setAddr(IPv6Dst, l.DstIP.To16())
			c.setUint(IPv6FLabel, uint64(l.FlowLabel))

		// ip_proto is the upper layer protocol that follows the last
		// extension header.
		case *layers.IPv6HopByHop:
			c.setUint(IPProto, uint64(l.NextHeader))
		case *layers.IPv6Routing:
			c.setUint(IPProto, uint64(l.NextHeader))
		case *layers.IPv6Fragment:
			c.setUint(IPProto, uint64(l.NextHeader))
		case *layers.IPv6Destination:
			c.setUint(IPProto, uint64(l.NextHeader))

		case *layers.TCP:
			c.setUint(TCPSrc, uint64(l.SrcPort))
			c.setUint(TCPDst, uint64(l.DstPort))

		case *layers.UDP:
			c.setUint(UDPSrc, uint64(l.SrcPort))
			c.setUint(UDPDst, uint64(l.DstPort))

		case *layers.SCTP:
			c.setUint(SCTPSrc, uint64(l.SrcPort))
			c.setUint(SCTPDst, uint64(l.DstPort))

		case *layers.ICMPv4:
			c.setUint(ICMPv4Type, uint64(l.TypeCode.Type()))
			c.setUint(ICMPv4Code, uint64(l.TypeCode.Code()))

		case *layers.ICMPv6:
			c.setUint(ICMPv6Type, uint64(l.TypeCode.Type()))
			c.setUint(ICMPv6Code, uint64(l.TypeCode.Code()))

		case *layers.ICMPv6NeighborSolicitation:
			c.setAddr(IPv6NdTarget, l.TargetAddress.To16())
			c.setNdOption(IPv6NdSll, l.Options, layers.ICMPv6OptSourceAddress)

		case *layers.ICMPv6NeighborAdvertisement:
			c.setAddr(IPv6NdTarget, l.TargetAddress.To16())
			c.setNdOption(IPv6NdTll, l.Options, layers.ICMPv6OptTargetAddress)
		}
	}

	if errLayer := packet.ErrorLayer(); errLayer != nil {
		klog.V(5).Infof("partial classification of %d byte frame: %v", len(frame), errLayer.Error())
	}

	return c.m
}

// classifier fills a match from decoded layers. A field that cannot be set
// is left out of the match.
type classifier struct {
	m *Match
}

func (c *classifier) setUint(t MatchType, v uint64) {
	if err := c.m.SetUint(t, v); err != nil {
		klog.V(5).Infof("classify: skipping %s: %v", t, err)
	}
}

// setAddr skips addresses of a length other than the field width, such as the
// protocol addresses of a non IPv4 ARP packet.
func (c *classifier) setAddr(t MatchType, addr []byte) {
	if len(addr) != t.Width() {
		klog.V(5).Infof("classify: skipping %s of %d bytes", t, len(addr))
		return
	}
	if err := c.m.Set(t, addr, nil); err != nil {
		klog.V(5).Infof("classify: skipping %s: %v", t, err)
	}
}

func (c *classifier) setNdOption(t MatchType, options layers.ICMPv6Options, optType layers.ICMPv6Opt) {
	for _, opt := range options {
		if opt.Type == optType && len(opt.Data) >= 6 {
			c.setAddr(t, opt.Data[:6])
			return
		}
	}
}

func boolUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
