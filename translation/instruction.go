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

type instructionCodec struct {
	wire   uint16
	typ    pipeline.InstructionType
	since  uint8
	decode func(t *Translator, i ofp13.OfpInstruction, tableID uint8, g *pipeline.InstructionGroup) error
	encode func(t *Translator, g *pipeline.InstructionGroup) (ofp13.OfpInstruction, error)
}

var instructionCodecs = []*instructionCodec{
	{ofp13.OFPIT_GOTO_TABLE, pipeline.InstructionGotoTable, Version12,
		func(_ *Translator, i ofp13.OfpInstruction, tableID uint8, g *pipeline.InstructionGroup) error {
			o, ok := i.(*ofp13.OfpInstructionGotoTable)
			if !ok {
				return badInstructionLen(i)
			}
			if o.TableId <= tableID || o.TableId > ofp13.OFPTT_MAX {
				return malformed(ofp13.OFPET_BAD_INSTRUCTION, ofp13.OFPBIC_BAD_TABLE_ID,
					"goto_table:%d from table %d", o.TableId, tableID)
			}
			return g.AddGotoTable(o.TableId)
		},
		func(_ *Translator, g *pipeline.InstructionGroup) (ofp13.OfpInstruction, error) {
			return ofp13.NewOfpInstructionGotoTable(g.GotoTable), nil
		}},
	{ofp13.OFPIT_WRITE_METADATA, pipeline.InstructionWriteMetadata, Version12,
		func(_ *Translator, i ofp13.OfpInstruction, _ uint8, g *pipeline.InstructionGroup) error {
			o, ok := i.(*ofp13.OfpInstructionWriteMetadata)
			if !ok {
				return badInstructionLen(i)
			}
			return g.AddWriteMetadata(o.Metadata, o.MetadataMask)
		},
		func(_ *Translator, g *pipeline.InstructionGroup) (ofp13.OfpInstruction, error) {
			return ofp13.NewOfpInstructionWriteMetadata(g.Metadata, g.MetadataMask), nil
		}},
	{ofp13.OFPIT_WRITE_ACTIONS, pipeline.InstructionWriteActions, Version12,
		func(t *Translator, i ofp13.OfpInstruction, _ uint8, g *pipeline.InstructionGroup) error {
			actions, err := t.decodeActionsInstruction(i)
			if err != nil {
				return err
			}
			return g.AddWriteActions(actions)
		},
		func(t *Translator, g *pipeline.InstructionGroup) (ofp13.OfpInstruction, error) {
			return t.encodeActionsInstruction(ofp13.OFPIT_WRITE_ACTIONS, g.Write.Actions())
		}},
	{ofp13.OFPIT_APPLY_ACTIONS, pipeline.InstructionApplyActions, Version12,
		func(t *Translator, i ofp13.OfpInstruction, _ uint8, g *pipeline.InstructionGroup) error {
			actions, err := t.decodeActionsInstruction(i)
			if err != nil {
				return err
			}
			return g.AddApplyActions(actions)
		},
		func(t *Translator, g *pipeline.InstructionGroup) (ofp13.OfpInstruction, error) {
			return t.encodeActionsInstruction(ofp13.OFPIT_APPLY_ACTIONS, g.Apply)
		}},
	{ofp13.OFPIT_CLEAR_ACTIONS, pipeline.InstructionClearActions, Version12,
		func(_ *Translator, i ofp13.OfpInstruction, _ uint8, g *pipeline.InstructionGroup) error {
			return g.AddClearActions()
		},
		func(t *Translator, g *pipeline.InstructionGroup) (ofp13.OfpInstruction, error) {
			return t.encodeActionsInstruction(ofp13.OFPIT_CLEAR_ACTIONS, nil)
		}},
	{ofp13.OFPIT_METER, pipeline.InstructionMeter, Version13,
		func(_ *Translator, i ofp13.OfpInstruction, _ uint8, g *pipeline.InstructionGroup) error {
			o, ok := i.(*ofp13.OfpInstructionMeter)
			if !ok {
				return badInstructionLen(i)
			}
			if err := checkMeter(o.MeterId); err != nil {
				return err
			}
			return g.AddMeter(o.MeterId)
		},
		func(_ *Translator, g *pipeline.InstructionGroup) (ofp13.OfpInstruction, error) {
			if err := checkMeter(g.MeterID); err != nil {
				return nil, err
			}
			return ofp13.NewOfpInstructionMeter(g.MeterID), nil
		}},
}

func badInstructionLen(i ofp13.OfpInstruction) error {
	return malformed(ofp13.OFPET_BAD_INSTRUCTION, ofp13.OFPBIC_BAD_LEN, "unexpected instruction %T", i)
}

func checkMeter(id uint32) error {
	if id == 0 || (id > ofp13.OFPM_MAX && id != ofp13.OFPM_SLOWPATH && id != ofp13.OFPM_CONTROLLER) {
		return malformed(ofp13.OFPET_METER_MOD_FAILED, ofp13.OFPMMFC_INVALID_METER, "meter %#x", id)
	}
	return nil
}

func (t *Translator) decodeActionsInstruction(i ofp13.OfpInstruction) (pipeline.ActionList, error) {
	o, ok := i.(*ofp13.OfpInstructionActions)
	if !ok {
		return nil, badInstructionLen(i)
	}
	return t.ToPipelineActions(o.Actions)
}

func (t *Translator) encodeActionsInstruction(typ uint16, actions pipeline.ActionList) (ofp13.OfpInstruction, error) {
	wire, err := t.ToWireActions(actions)
	if err != nil {
		return nil, err
	}

	i := ofp13.NewOfpInstructionActions(typ)
	i.Actions = wire
	return i, nil
}

func (t *Translator) instructionCodecFor(i ofp13.OfpInstruction) (*instructionCodec, error) {
	typ := i.InstructionType()
	if typ == ofp13.OFPIT_EXPERIMENTER {
		return nil, unsupported(ofp13.OFPET_BAD_INSTRUCTION, ofp13.OFPBIC_BAD_EXPERIMENTER, "experimenter instruction")
	}

	if codec, ok := t.instructions[typ]; ok {
		return codec, nil
	}

	for _, codec := range instructionCodecs {
		if codec.wire == typ {
			return nil, unsupported(ofp13.OFPET_BAD_INSTRUCTION, ofp13.OFPBIC_UNSUP_INST,
				"%s in version %#x", codec.typ, t.version)
		}
	}
	return nil, unsupported(ofp13.OFPET_BAD_INSTRUCTION, ofp13.OFPBIC_UNKNOWN_INST, "instruction type %d", typ)
}

// ToPipelineInstructions translates the instructions of a flow entry in
// table tableID. Apply and write actions are kept apart.
func (t *Translator) ToPipelineInstructions(instructions []ofp13.OfpInstruction, tableID uint8) (pipeline.InstructionGroup, error) {
	var g pipeline.InstructionGroup

	for _, i := range instructions {
		if i == nil {
			return pipeline.InstructionGroup{}, malformed(ofp13.OFPET_BAD_INSTRUCTION, ofp13.OFPBIC_BAD_LEN,
				"empty instruction")
		}

		codec, err := t.instructionCodecFor(i)
		if err != nil {
			return pipeline.InstructionGroup{}, err
		}

		if g.Has(codec.typ) {
			return pipeline.InstructionGroup{}, malformed(ofp13.OFPET_BAD_INSTRUCTION, ofp13.OFPBIC_UNSUP_INST,
				"duplicate %s", codec.typ)
		}

		if err := codec.decode(t, i, tableID, &g); err != nil {
			return pipeline.InstructionGroup{}, err
		}
	}

	return g, nil
}

// ToWireInstructions translates the instructions of entry in execution
// order. An empty apply-actions instruction is kept.
func (t *Translator) ToWireInstructions(entry *pipeline.FlowEntry) ([]ofp13.OfpInstruction, error) {
	return t.toWireInstructionGroup(&entry.Instructions)
}

func (t *Translator) toWireInstructionGroup(g *pipeline.InstructionGroup) ([]ofp13.OfpInstruction, error) {
	wire := make([]ofp13.OfpInstruction, 0, g.Len())

	for _, typ := range g.Types() {
		codec := t.byInstruction[typ]
		if codec == nil {
			return nil, unsupported(ofp13.OFPET_BAD_INSTRUCTION, ofp13.OFPBIC_UNSUP_INST,
				"%s in version %#x", typ, t.version)
		}

		i, err := codec.encode(t, g)
		if err != nil {
			return nil, err
		}
		wire = append(wire, i)
	}

	return wire, nil
}
