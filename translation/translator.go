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

// Package translation converts between OpenFlow wire objects and the
// pipeline's flow entries, groups and capability bitmaps.
//
// A Translator is built for one negotiated protocol version. It holds only
// read-only dispatch tables, so a single Translator can be shared by any
// number of goroutines.
package translation

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog"

	"github.com/k-vswitch/softswitch/pipeline"
)

// Protocol versions as carried in the OpenFlow header.
const (
	Version12 uint8 = 0x03
	Version13 uint8 = 0x04
)

var ErrUnsupportedVersion = errors.New("unsupported protocol version")

// ParseVersion maps the dotted form used in configuration to a version.
func ParseVersion(s string) (uint8, error) {
	switch s {
	case "1.2":
		return Version12, nil
	case "1.3":
		return Version13, nil
	default:
		return 0, errors.Wrap(ErrUnsupportedVersion, s)
	}
}

// Translator holds the codecs of one protocol version.
type Translator struct {
	version uint8

	fields     map[uint32]*fieldCodec
	fieldOrder []*fieldCodec
	byMatch    [pipeline.NumMatchTypes]*fieldCodec
	matchTypes uint64

	actions     map[uint16]*actionCodec
	byAction    [pipeline.NumActionTypes]*actionCodec
	actionTypes uint32

	instructions     map[uint16]*instructionCodec
	byInstruction    [pipeline.NumInstructionTypes]*instructionCodec
	instructionTypes uint32

	matchTable       *CapabilityTable[uint32]
	actionTable      *CapabilityTable[uint16]
	instructionTable *CapabilityTable[uint16]
}

// New builds the translator for version. Codecs introduced after version
// are left out of every table.
func New(version uint8) (*Translator, error) {
	if version != Version12 && version != Version13 {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "%#x", version)
	}

	t := &Translator{
		version:          version,
		fields:           make(map[uint32]*fieldCodec),
		actions:          make(map[uint16]*actionCodec),
		instructions:     make(map[uint16]*instructionCodec),
		matchTable:       NewCapabilityTable(oxmID),
		actionTable:      NewCapabilityTable[uint16](nil),
		instructionTable: NewCapabilityTable[uint16](nil),
	}

	for _, c := range fieldCodecs {
		if c.since > version {
			continue
		}
		t.fields[c.oxm] = c
		t.fieldOrder = append(t.fieldOrder, c)
		t.byMatch[c.field] = c
		t.matchTypes |= 1 << c.field
		t.matchTable.Add(uint(c.field), c.header)
	}
	sort.Slice(t.fieldOrder, func(i, j int) bool {
		return t.fieldOrder[i].oxm < t.fieldOrder[j].oxm
	})

	for _, c := range actionCodecs {
		if c.since > version {
			continue
		}
		t.actions[c.wire] = c
		t.byAction[c.typ] = c
		t.actionTypes |= 1 << c.typ
		t.actionTable.Add(uint(c.typ), c.wire)
	}

	for _, c := range instructionCodecs {
		if c.since > version {
			continue
		}
		t.instructions[c.wire] = c
		t.byInstruction[c.typ] = c
		t.instructionTypes |= 1 << c.typ
		t.instructionTable.Add(uint(c.typ), c.wire)
	}

	klog.V(4).Infof("translator for version %#x: %d match fields, %d actions, %d instructions",
		version, len(t.fields), len(t.actions), len(t.instructions))

	return t, nil
}

func (t *Translator) Version() uint8 {
	return t.version
}

func (t *Translator) String() string {
	return fmt.Sprintf("translator(version=%#x)", t.version)
}

// MatchTable maps match bits to OXM headers. It also serves the set-field
// and wildcard capabilities.
func (t *Translator) MatchTable() *CapabilityTable[uint32] {
	return t.matchTable
}

// ActionTable maps action bits to OFPAT types.
func (t *Translator) ActionTable() *CapabilityTable[uint16] {
	return t.actionTable
}

// InstructionTable maps instruction bits to OFPIT types.
func (t *Translator) InstructionTable() *CapabilityTable[uint16] {
	return t.instructionTable
}

// SupportedMatches is the match bitmap this version can translate.
func (t *Translator) SupportedMatches() uint64 {
	return t.matchTypes
}

// SupportedActions is the action bitmap this version can translate.
func (t *Translator) SupportedActions() uint32 {
	return t.actionTypes
}

// SupportedInstructions is the instruction bitmap this version can translate.
func (t *Translator) SupportedInstructions() uint32 {
	return t.instructionTypes
}

// oxmID drops the mask bit and length of an OXM header, so masked and
// unmasked headers name the same capability.
func oxmID(header uint32) uint32 {
	return header &^ 0x1ff
}
