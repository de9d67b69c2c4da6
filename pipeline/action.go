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
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var ErrNotSettable = errors.New("field cannot be set")

// ActionType enumerates the actions of the pipeline. Bit i of an action
// bitmap stands for ActionType(i).
type ActionType uint8

const (
	ActionOutput ActionType = iota
	ActionCopyTTLOut
	ActionCopyTTLIn
	ActionSetMplsTTL
	ActionDecMplsTTL
	ActionPushVlan
	ActionPopVlan
	ActionPushMpls
	ActionPopMpls
	ActionSetQueue
	ActionGroup
	ActionSetNwTTL
	ActionDecNwTTL
	ActionSetField
	ActionPushPbb
	ActionPopPbb

	NumActionTypes
)

var actionNames = [NumActionTypes]string{
	ActionOutput:     "output",
	ActionCopyTTLOut: "copy_ttl_out",
	ActionCopyTTLIn:  "copy_ttl_in",
	ActionSetMplsTTL: "set_mpls_ttl",
	ActionDecMplsTTL: "dec_mpls_ttl",
	ActionPushVlan:   "push_vlan",
	ActionPopVlan:    "pop_vlan",
	ActionPushMpls:   "push_mpls",
	ActionPopMpls:    "pop_mpls",
	ActionSetQueue:   "set_queue",
	ActionGroup:      "group",
	ActionSetNwTTL:   "set_nw_ttl",
	ActionDecNwTTL:   "dec_ttl",
	ActionSetField:   "set_field",
	ActionPushPbb:    "push_pbb",
	ActionPopPbb:     "pop_pbb",
}

func (t ActionType) Valid() bool {
	return t < NumActionTypes
}

func (t ActionType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("ActionType(%d)", uint8(t))
	}
	return actionNames[t]
}

// Action is one pipeline action. Only the parameters of its Type are set.
type Action struct {
	Type ActionType

	Port      uint32
	MaxLen    uint16
	GroupID   uint32
	QueueID   uint32
	TTL       uint8
	EtherType uint16

	// Field and Value describe a set-field action.
	Field MatchType
	Value []byte
}

func Output(port uint32, maxLen uint16) Action {
	return Action{Type: ActionOutput, Port: port, MaxLen: maxLen}
}

func Group(id uint32) Action {
	return Action{Type: ActionGroup, GroupID: id}
}

func SetQueue(id uint32) Action {
	return Action{Type: ActionSetQueue, QueueID: id}
}

func SetMplsTTL(ttl uint8) Action {
	return Action{Type: ActionSetMplsTTL, TTL: ttl}
}

func SetNwTTL(ttl uint8) Action {
	return Action{Type: ActionSetNwTTL, TTL: ttl}
}

func Push(t ActionType, etherType uint16) Action {
	return Action{Type: t, EtherType: etherType}
}

func Pop(t ActionType, etherType uint16) Action {
	return Action{Type: t, EtherType: etherType}
}

// Simple returns an action without parameters such as dec_ttl.
func Simple(t ActionType) Action {
	return Action{Type: t}
}

func SetField(field MatchType, value []byte) (Action, error) {
	if !field.Settable() {
		return Action{}, errors.Wrap(ErrNotSettable, field.String())
	}
	if len(value) != field.Width() {
		return Action{}, errors.Wrapf(ErrFieldWidth, "%s: %d bytes, want %d", field, len(value), field.Width())
	}

	return Action{Type: ActionSetField, Field: field, Value: append([]byte(nil), value...)}, nil
}

func (a Action) Equal(o Action) bool {
	return a.Type == o.Type &&
		a.Port == o.Port &&
		a.MaxLen == o.MaxLen &&
		a.GroupID == o.GroupID &&
		a.QueueID == o.QueueID &&
		a.TTL == o.TTL &&
		a.EtherType == o.EtherType &&
		a.Field == o.Field &&
		bytes.Equal(a.Value, o.Value)
}

func (a Action) String() string {
	switch a.Type {
	case ActionOutput:
		return fmt.Sprintf("output:%d", a.Port)
	case ActionGroup:
		return fmt.Sprintf("group:%d", a.GroupID)
	case ActionSetQueue:
		return fmt.Sprintf("set_queue:%d", a.QueueID)
	case ActionSetMplsTTL, ActionSetNwTTL:
		return fmt.Sprintf("%s:%d", a.Type, a.TTL)
	case ActionPushVlan, ActionPushMpls, ActionPushPbb, ActionPopMpls:
		return fmt.Sprintf("%s:%#04x", a.Type, a.EtherType)
	case ActionSetField:
		return fmt.Sprintf("set_field:%s->%s", formatValue(a.Field, a.Value), a.Field)
	default:
		return a.Type.String()
	}
}

// ActionList is an ordered list of actions, executed in order.
type ActionList []Action

func (l ActionList) String() string {
	parts := make([]string, 0, len(l))
	for _, a := range l {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, ",")
}

// actionSetOrder is the execution order of an action set.
var actionSetOrder = [NumActionTypes]int{
	ActionCopyTTLIn:  0,
	ActionPopVlan:    1,
	ActionPopMpls:    1,
	ActionPopPbb:     1,
	ActionPushMpls:   2,
	ActionPushPbb:    3,
	ActionPushVlan:   4,
	ActionCopyTTLOut: 5,
	ActionDecMplsTTL: 6,
	ActionDecNwTTL:   6,
	ActionSetMplsTTL: 7,
	ActionSetNwTTL:   7,
	ActionSetField:   7,
	ActionSetQueue:   8,
	ActionGroup:      9,
	ActionOutput:     10,
}

// ActionSet holds at most one action of each kind, set-field actions being
// keyed by their field. Actions are kept in execution order.
type ActionSet struct {
	actions []Action
}

func sameKind(a, b Action) bool {
	if a.Type != b.Type {
		return false
	}
	return a.Type != ActionSetField || a.Field == b.Field
}

// Write adds a to the set, replacing an action of the same kind.
func (s *ActionSet) Write(a Action) {
	for i := range s.actions {
		if sameKind(s.actions[i], a) {
			s.actions[i] = a
			return
		}
	}

	s.actions = append(s.actions, a)
	sort.SliceStable(s.actions, func(i, j int) bool {
		ai, aj := s.actions[i], s.actions[j]
		if oi, oj := actionSetOrder[ai.Type], actionSetOrder[aj.Type]; oi != oj {
			return oi < oj
		}
		if ai.Type != aj.Type {
			return ai.Type < aj.Type
		}
		return ai.Field < aj.Field
	})
}

func (s *ActionSet) Actions() ActionList {
	return append(ActionList(nil), s.actions...)
}

func (s *ActionSet) Len() int {
	return len(s.actions)
}

func (s *ActionSet) Clear() {
	s.actions = nil
}

func (s ActionSet) Equal(o ActionSet) bool {
	if len(s.actions) != len(o.actions) {
		return false
	}
	for i := range s.actions {
		if !s.actions[i].Equal(o.actions[i]) {
			return false
		}
	}
	return true
}
