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
	"bytes"

	"github.com/Kmotiko/gofc/ofprotocol/ofp13"

	"github.com/k-vswitch/softswitch/pipeline"
)

// ToWireTableFeatures advertises caps for table tableID. Capabilities the
// negotiated version cannot express are left out.
func (t *Translator) ToWireTableFeatures(tableID uint8, caps pipeline.TableCapabilities) *ofp13.OfpTableFeatures {
	props := []ofp13.OfpTableFeatureProp{
		ofp13.NewOfpTableFeaturePropInstructions(ofp13.OFPTFPT_INSTRUCTIONS, t.instructionIDs(caps.Instructions)),
		ofp13.NewOfpTableFeaturePropActions(ofp13.OFPTFPT_WRITE_ACTIONS, t.actionIDs(caps.WriteActions)),
		ofp13.NewOfpTableFeaturePropActions(ofp13.OFPTFPT_APPLY_ACTIONS, t.actionIDs(caps.ApplyActions)),
		ofp13.NewOfpTableFeaturePropOxm(ofp13.OFPTFPT_MATCH, BitmapToProperties(caps.Matches, t.matchTable)),
		ofp13.NewOfpTableFeaturePropOxm(ofp13.OFPTFPT_WILDCARDS, BitmapToProperties(caps.Wildcards, t.matchTable)),
		ofp13.NewOfpTableFeaturePropOxm(ofp13.OFPTFPT_WRITE_SETFIELD, BitmapToProperties(caps.WriteSetFields, t.matchTable)),
		ofp13.NewOfpTableFeaturePropOxm(ofp13.OFPTFPT_APPLY_SETFIELD, BitmapToProperties(caps.ApplySetFields, t.matchTable)),
	}

	name := []byte(caps.Name)
	if len(name) >= ofp13.OFP_MAX_TABLE_NAME_LEN {
		name = name[:ofp13.OFP_MAX_TABLE_NAME_LEN-1]
	}

	return ofp13.NewOfpTableFeatures(tableID, name, caps.MetadataMatch, caps.MetadataWrite, 0, caps.MaxEntries, props)
}

func (t *Translator) instructionIDs(bitmap uint32) []*ofp13.OfpInstructionId {
	types := BitmapToProperties(bitmap, t.instructionTable)
	ids := make([]*ofp13.OfpInstructionId, 0, len(types))
	for _, typ := range types {
		ids = append(ids, ofp13.NewOfpInstructionId(typ, 4))
	}
	return ids
}

func (t *Translator) actionIDs(bitmap uint32) []ofp13.OfpActionHeader {
	types := BitmapToProperties(bitmap, t.actionTable)
	ids := make([]ofp13.OfpActionHeader, 0, len(types))
	for _, typ := range types {
		ids = append(ids, ofp13.OfpActionHeader{Type: typ, Length: 4})
	}
	return ids
}

// ToPipelineCapabilities reads the capabilities of a table-features body.
// Properties and identifiers this version does not know are ignored.
func (t *Translator) ToPipelineCapabilities(features *ofp13.OfpTableFeatures) (pipeline.TableCapabilities, error) {
	if features == nil {
		return pipeline.TableCapabilities{}, malformed(ofp13.OFPET_TABLE_FEATURES_FAILED, ofp13.OFPTFFC_BAD_LEN,
			"missing table features")
	}

	caps := pipeline.TableCapabilities{
		Name:          string(bytes.TrimRight(features.Name, "\x00")),
		MaxEntries:    features.MaxEntries,
		MetadataMatch: features.MetadataMatch,
		MetadataWrite: features.MetadataWrite,
	}

	for _, prop := range features.Properties {
		switch p := prop.(type) {
		case *ofp13.OfpTableFeaturePropInstructions:
			if p.Property() != ofp13.OFPTFPT_INSTRUCTIONS {
				continue
			}
			types := make([]uint16, 0, len(p.InstructionIds))
			for _, id := range p.InstructionIds {
				if id != nil {
					types = append(types, id.Type)
				}
			}
			caps.Instructions = PropertiesToBitmap[uint32](types, t.instructionTable)
		case *ofp13.OfpTableFeaturePropActions:
			types := make([]uint16, 0, len(p.ActionIds))
			for _, id := range p.ActionIds {
				types = append(types, id.Type)
			}
			switch p.Property() {
			case ofp13.OFPTFPT_WRITE_ACTIONS:
				caps.WriteActions = PropertiesToBitmap[uint32](types, t.actionTable)
			case ofp13.OFPTFPT_APPLY_ACTIONS:
				caps.ApplyActions = PropertiesToBitmap[uint32](types, t.actionTable)
			}
		case *ofp13.OfpTableFeaturePropOxm:
			bitmap := PropertiesToBitmap[uint64](p.OxmIds, t.matchTable)
			switch p.Property() {
			case ofp13.OFPTFPT_MATCH:
				caps.Matches = bitmap
			case ofp13.OFPTFPT_WILDCARDS:
				caps.Wildcards = bitmap
			case ofp13.OFPTFPT_WRITE_SETFIELD:
				caps.WriteSetFields = bitmap
			case ofp13.OFPTFPT_APPLY_SETFIELD:
				caps.ApplySetFields = bitmap
			}
		}
	}

	return caps, nil
}
