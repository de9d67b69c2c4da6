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

// Package ports maps the kernel links attached to the switch to OpenFlow
// port descriptions.
package ports

import (
	"net"
	"strings"

	"github.com/Kmotiko/gofc/ofprotocol/ofp13"
	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"k8s.io/klog"

	"github.com/k-vswitch/softswitch/config"
	"github.com/k-vswitch/softswitch/translation"
)

var ErrUnknownFeature = errors.New("unknown port feature")

var featureNames = map[string]uint32{
	"10MB_HD":    ofp13.OFPPF_10MB_HD,
	"10MB_FD":    ofp13.OFPPF_10MB_FD,
	"100MB_HD":   ofp13.OFPPF_100MB_HD,
	"100MB_FD":   ofp13.OFPPF_100MB_FD,
	"1GB_HD":     ofp13.OFPPF_1GB_HD,
	"1GB_FD":     ofp13.OFPPF_1GB_FD,
	"10GB_FD":    ofp13.OFPPF_10GB_FD,
	"40GB_FD":    ofp13.OFPPF_40GB_FD,
	"100GB_FD":   ofp13.OFPPF_100GB_FD,
	"1TB_FD":     ofp13.OFPPF_1TB_FD,
	"OTHER":      ofp13.OFPPF_OTHER,
	"COPPER":     ofp13.OFPPF_COPPER,
	"FIBER":      ofp13.OFPPF_FIBER,
	"AUTONEG":    ofp13.OFPPF_AUTONEG,
	"PAUSE":      ofp13.OFPPF_PAUSE,
	"PAUSE_ASYM": ofp13.OFPPF_PAUSE_ASYM,
}

// ParseFeatures ORs the OFPPF bits named in names. Names are case
// insensitive and may carry the OFPPF_ prefix.
func ParseFeatures(names []string) (uint32, error) {
	var features uint32
	for _, name := range names {
		key := strings.TrimPrefix(strings.ToUpper(name), "OFPPF_")
		bit, ok := featureNames[key]
		if !ok {
			return 0, errors.Wrapf(ErrUnknownFeature, "%q", name)
		}
		features |= bit
	}
	return features, nil
}

// LinkGetter looks links up by name. *netlink.Handle implements it.
type LinkGetter interface {
	LinkByName(name string) (netlink.Link, error)
}

// FromLink describes the link with attributes attrs as OpenFlow port no.
// features are the OFPPF bits of the link, used as its current, advertised
// and supported features.
func FromLink(no uint32, attrs netlink.LinkAttrs, features uint32) *ofp13.OfpPort {
	speed := translation.PortSpeedKb(features)

	return &ofp13.OfpPort{
		PortNo:     no,
		HwAddr:     append(net.HardwareAddr(nil), attrs.HardwareAddr...),
		Name:       []byte(linkName(attrs.Name)),
		Config:     portConfig(attrs),
		State:      portState(attrs),
		Curr:       features,
		Advertised: features,
		Supported:  features,
		CurrSpeed:  speed,
		MaxSpeed:   speed,
	}
}

func portConfig(attrs netlink.LinkAttrs) uint32 {
	if attrs.Flags&net.FlagUp == 0 {
		return ofp13.OFPPC_PORT_DOWN
	}
	return 0
}

// portState trusts the operational state and falls back to the admin flag
// for drivers that do not report one.
func portState(attrs netlink.LinkAttrs) uint32 {
	switch attrs.OperState {
	case netlink.OperUp:
		return ofp13.OFPPS_LIVE
	case netlink.OperUnknown:
		if attrs.Flags&net.FlagUp != 0 {
			return ofp13.OFPPS_LIVE
		}
	}
	return ofp13.OFPPS_LINK_DOWN
}

// Discover builds the descriptions of the configured ports. Ports are
// numbered from 1 in configuration order.
func Discover(links LinkGetter, ports []config.Port) ([]*ofp13.OfpPort, error) {
	descs := make([]*ofp13.OfpPort, 0, len(ports))

	for i, p := range ports {
		features, err := ParseFeatures(p.Features)
		if err != nil {
			return nil, errors.Wrapf(err, "port %q", p.Name)
		}

		link, err := links.LinkByName(p.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "could not lookup link %q", p.Name)
		}

		desc := FromLink(uint32(i+1), *link.Attrs(), features)
		klog.V(4).Infof("port %d: %s state=%#x speed=%dkbps", desc.PortNo, p.Name, desc.State, desc.CurrSpeed)
		descs = append(descs, desc)
	}

	return descs, nil
}
