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

type actionCodec struct {
	wire   uint16
	typ    pipeline.ActionType
	since  uint8
	decode func(t *Translator, a ofp13.OfpAction) (pipeline.Action, error)
	encode func(t *Translator, a pipeline.Action) (ofp13.OfpAction, error)
}

var actionCodecs = []*actionCodec{
	{ofp13.OFPAT_OUTPUT, pipeline.ActionOutput, Version12, decodeOutput,
		func(_ *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
			if err := checkOutputPort(a.Port); err != nil {
				return nil, err
			}
			return ofp13.NewOfpActionOutput(a.Port, a.MaxLen), nil
		}},
	{ofp13.OFPAT_COPY_TTL_OUT, pipeline.ActionCopyTTLOut, Version12, decodeSimple(pipeline.ActionCopyTTLOut),
		func(_ *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
			return ofp13.NewOfpActionCopyTtlOut(), nil
		}},
	{ofp13.OFPAT_COPY_TTL_IN, pipeline.ActionCopyTTLIn, Version12, decodeSimple(pipeline.ActionCopyTTLIn),
		func(_ *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
			return ofp13.NewOfpActionCopyTtlIn(), nil
		}},
	{ofp13.OFPAT_SET_MPLS_TTL, pipeline.ActionSetMplsTTL, Version12,
		func(_ *Translator, a ofp13.OfpAction) (pipeline.Action, error) {
			o, ok := a.(*ofp13.OfpActionSetMplsTtl)
			if !ok {
				return pipeline.Action{}, badActionLen(a)
			}
			return pipeline.SetMplsTTL(o.MplsTtl), nil
		},
		func(_ *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
			return ofp13.NewOfpActionSetMplsTtl(a.TTL), nil
		}},
	{ofp13.OFPAT_DEC_MPLS_TTL, pipeline.ActionDecMplsTTL, Version12, decodeSimple(pipeline.ActionDecMplsTTL),
		func(_ *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
			return ofp13.NewOfpActionDecMplsTtl(), nil
		}},
	{ofp13.OFPAT_PUSH_VLAN, pipeline.ActionPushVlan, Version12, decodePush(pipeline.ActionPushVlan), encodePush},
	{ofp13.OFPAT_POP_VLAN, pipeline.ActionPopVlan, Version12, decodePop(pipeline.ActionPopVlan),
		func(_ *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
			return ofp13.NewOfpActionPopVlan(a.EtherType), nil
		}},
	{ofp13.OFPAT_PUSH_MPLS, pipeline.ActionPushMpls, Version12, decodePush(pipeline.ActionPushMpls), encodePush},
	{ofp13.OFPAT_POP_MPLS, pipeline.ActionPopMpls, Version12, decodePop(pipeline.ActionPopMpls),
		func(_ *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
			return ofp13.NewOfpActionPopMpls(a.EtherType), nil
		}},
	{ofp13.OFPAT_SET_QUEUE, pipeline.ActionSetQueue, Version12,
		func(_ *Translator, a ofp13.OfpAction) (pipeline.Action, error) {
			o, ok := a.(*ofp13.OfpActionSetQueue)
			if !ok {
				return pipeline.Action{}, badActionLen(a)
			}
			return pipeline.SetQueue(o.QueueId), nil
		},
		func(_ *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
			return ofp13.NewOfpActionSetQueue(a.QueueID), nil
		}},
	{ofp13.OFPAT_GROUP, pipeline.ActionGroup, Version12,
		func(_ *Translator, a ofp13.OfpAction) (pipeline.Action, error) {
			o, ok := a.(*ofp13.OfpActionGroup)
			if !ok {
				return pipeline.Action{}, badActionLen(a)
			}
			if err := checkOutputGroup(o.GroupId); err != nil {
				return pipeline.Action{}, err
			}
			return pipeline.Group(o.GroupId), nil
		},
		func(_ *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
			if err := checkOutputGroup(a.GroupID); err != nil {
				return nil, err
			}
			return ofp13.NewOfpActionGroup(a.GroupID), nil
		}},
	{ofp13.OFPAT_SET_NW_TTL, pipeline.ActionSetNwTTL, Version12,
		func(_ *Translator, a ofp13.OfpAction) (pipeline.Action, error) {
			o, ok := a.(*ofp13.OfpActionSetNwTtl)
			if !ok {
				return pipeline.Action{}, badActionLen(a)
			}
			return pipeline.SetNwTTL(o.NwTtl), nil
		},
		func(_ *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
			return ofp13.NewOfpActionSetNwTtl(a.TTL), nil
		}},
	{ofp13.OFPAT_DEC_NW_TTL, pipeline.ActionDecNwTTL, Version12, decodeSimple(pipeline.ActionDecNwTTL),
		func(_ *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
			return ofp13.NewOfpActionDecNwTtl(), nil
		}},
	{ofp13.OFPAT_SET_FIELD, pipeline.ActionSetField, Version12, decodeSetField, encodeSetField},
	{ofp13.OFPAT_PUSH_PBB, pipeline.ActionPushPbb, Version13, decodePush(pipeline.ActionPushPbb), encodePush},
	{ofp13.OFPAT_POP_PBB, pipeline.ActionPopPbb, Version13, decodePop(pipeline.ActionPopPbb),
		func(_ *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
			return ofp13.NewOfpActionPopPbb(a.EtherType), nil
		}},
}

// pushEtherTypes lists the tag ethertypes each push action accepts.
var pushEtherTypes = map[pipeline.ActionType][]uint16{
	pipeline.ActionPushVlan: {pipeline.EtherTypeVLAN, pipeline.EtherTypeQinQ},
	pipeline.ActionPushMpls: {pipeline.EtherTypeMPLS, pipeline.EtherTypeMPLSMcast},
	pipeline.ActionPushPbb:  {pipeline.EtherTypePBB},
}

func badActionLen(a ofp13.OfpAction) error {
	return malformed(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_LEN, "unexpected action %T", a)
}

// checkOutputPort accepts physical ports and the reserved ports a flow can
// output to.
func checkOutputPort(port uint32) error {
	if port == 0 || port == ofp13.OFPP_ANY || (port > ofp13.OFPP_MAX && port < ofp13.OFPP_IN_PORT) {
		return malformed(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_OUT_PORT, "output port %#x", port)
	}
	return nil
}

func checkOutputGroup(group uint32) error {
	if group > ofp13.OFPG_MAX {
		return malformed(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_OUT_GROUP, "group %#x", group)
	}
	return nil
}

func checkPushEtherType(t pipeline.ActionType, etherType uint16) error {
	for _, e := range pushEtherTypes[t] {
		if e == etherType {
			return nil
		}
	}
	return malformed(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_ARGUMENT, "%s ethertype %#04x", t, etherType)
}

func decodeOutput(_ *Translator, a ofp13.OfpAction) (pipeline.Action, error) {
	o, ok := a.(*ofp13.OfpActionOutput)
	if !ok {
		return pipeline.Action{}, badActionLen(a)
	}
	if err := checkOutputPort(o.Port); err != nil {
		return pipeline.Action{}, err
	}
	return pipeline.Output(o.Port, o.MaxLen), nil
}

func decodeSimple(typ pipeline.ActionType) func(*Translator, ofp13.OfpAction) (pipeline.Action, error) {
	return func(_ *Translator, a ofp13.OfpAction) (pipeline.Action, error) {
		return pipeline.Simple(typ), nil
	}
}

func decodePush(typ pipeline.ActionType) func(*Translator, ofp13.OfpAction) (pipeline.Action, error) {
	return func(_ *Translator, a ofp13.OfpAction) (pipeline.Action, error) {
		o, ok := a.(*ofp13.OfpActionPush)
		if !ok {
			return pipeline.Action{}, badActionLen(a)
		}
		if err := checkPushEtherType(typ, o.EtherType); err != nil {
			return pipeline.Action{}, err
		}
		return pipeline.Push(typ, o.EtherType), nil
	}
}

func encodePush(_ *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
	if err := checkPushEtherType(a.Type, a.EtherType); err != nil {
		return nil, err
	}

	var wire uint16
	switch a.Type {
	case pipeline.ActionPushVlan:
		wire = ofp13.OFPAT_PUSH_VLAN
	case pipeline.ActionPushMpls:
		wire = ofp13.OFPAT_PUSH_MPLS
	default:
		wire = ofp13.OFPAT_PUSH_PBB
	}
	return ofp13.NewOfpActionPush(wire, a.EtherType), nil
}

func decodePop(typ pipeline.ActionType) func(*Translator, ofp13.OfpAction) (pipeline.Action, error) {
	return func(_ *Translator, a ofp13.OfpAction) (pipeline.Action, error) {
		o, ok := a.(*ofp13.OfpActionPop)
		if !ok {
			return pipeline.Action{}, badActionLen(a)
		}
		return pipeline.Pop(typ, o.EtherType), nil
	}
}

func decodeSetField(t *Translator, a ofp13.OfpAction) (pipeline.Action, error) {
	o, ok := a.(*ofp13.OfpActionSetField)
	if !ok {
		return pipeline.Action{}, badActionLen(a)
	}
	if o.Oxm == nil {
		return pipeline.Action{}, malformed(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_SET_LEN, "set_field without field")
	}

	if o.Oxm.OxmClass() != ofp13.OFPXMC_OPENFLOW_BASIC {
		return pipeline.Action{}, unsupported(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_SET_TYPE,
			"set_field oxm class %#x", o.Oxm.OxmClass())
	}
	codec, ok := t.fields[o.Oxm.OxmField()]
	if !ok {
		return pipeline.Action{}, unsupported(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_SET_TYPE,
			"set_field oxm field %d in version %#x", o.Oxm.OxmField(), t.version)
	}
	if !codec.field.Settable() {
		return pipeline.Action{}, malformed(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_SET_TYPE,
			"%s cannot be set", codec.field)
	}
	if o.Oxm.OxmHasMask() == 1 {
		return pipeline.Action{}, malformed(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_SET_ARGUMENT,
			"set_field %s with mask", codec.field)
	}

	value, _, err := codec.decode(o.Oxm)
	if err != nil {
		return pipeline.Action{}, malformed(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_SET_LEN, "set_field: %v", err)
	}

	action, err := pipeline.SetField(codec.field, value)
	if err != nil {
		return pipeline.Action{}, malformed(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_SET_LEN, "set_field: %v", err)
	}
	return action, nil
}

func encodeSetField(t *Translator, a pipeline.Action) (ofp13.OfpAction, error) {
	if !a.Field.Valid() || t.byMatch[a.Field] == nil {
		return nil, unsupported(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_SET_TYPE,
			"set_field %s in version %#x", a.Field, t.version)
	}
	if !a.Field.Settable() {
		return nil, malformed(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_SET_TYPE, "%s cannot be set", a.Field)
	}
	if len(a.Value) != a.Field.Width() {
		return nil, malformed(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_SET_LEN,
			"set_field %s: %d bytes, want %d", a.Field, len(a.Value), a.Field.Width())
	}

	codec := t.byMatch[a.Field]
	return ofp13.NewOfpActionSetField(codec.encode(codec.header, a.Value, nil)), nil
}

// ToPipelineAction translates one wire action.
func (t *Translator) ToPipelineAction(a ofp13.OfpAction) (pipeline.Action, error) {
	if a == nil {
		return pipeline.Action{}, malformed(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_LEN, "empty action")
	}

	if a.OfpActionType() == ofp13.OFPAT_EXPERIMENTER {
		return pipeline.Action{}, unsupported(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_EXPERIMENTER,
			"experimenter action")
	}

	codec, ok := t.actions[a.OfpActionType()]
	if !ok {
		return pipeline.Action{}, unsupported(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_TYPE,
			"action type %d in version %#x", a.OfpActionType(), t.version)
	}
	return codec.decode(t, a)
}

// ToPipelineActions translates a wire action list, keeping its order. An
// empty list yields an empty, non-nil ActionList.
func (t *Translator) ToPipelineActions(actions []ofp13.OfpAction) (pipeline.ActionList, error) {
	list := make(pipeline.ActionList, 0, len(actions))
	for _, a := range actions {
		action, err := t.ToPipelineAction(a)
		if err != nil {
			return nil, err
		}
		list = append(list, action)
	}
	return list, nil
}

// ToWireAction translates one pipeline action.
func (t *Translator) ToWireAction(a pipeline.Action) (ofp13.OfpAction, error) {
	if !a.Type.Valid() || t.byAction[a.Type] == nil {
		return nil, unsupported(ofp13.OFPET_BAD_ACTION, ofp13.OFPBAC_BAD_TYPE,
			"%s in version %#x", a.Type, t.version)
	}
	return t.byAction[a.Type].encode(t, a)
}

// ToWireActions translates an action list. The result is never nil, so an
// empty list stays an empty list on the wire.
func (t *Translator) ToWireActions(actions pipeline.ActionList) ([]ofp13.OfpAction, error) {
	wire := make([]ofp13.OfpAction, 0, len(actions))
	for _, a := range actions {
		action, err := t.ToWireAction(a)
		if err != nil {
			return nil, err
		}
		wire = append(wire, action)
	}
	return wire, nil
}
