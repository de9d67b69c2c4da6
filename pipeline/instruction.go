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
	"fmt"
	"math/bits"
	"strings"

	"github.com/pkg/errors"
)

var ErrDuplicateInstruction = errors.New("duplicate instruction")

// InstructionType enumerates the instructions of a flow entry in the order
// they are executed. Bit i of an instruction bitmap stands for
// InstructionType(i).
type InstructionType uint8

const (
	InstructionMeter InstructionType = iota
	InstructionApplyActions
	InstructionClearActions
	InstructionWriteActions
	InstructionWriteMetadata
	InstructionGotoTable

	NumInstructionTypes
)

var instructionNames = [NumInstructionTypes]string{
	InstructionMeter:         "meter",
	InstructionApplyActions:  "apply_actions",
	InstructionClearActions:  "clear_actions",
	InstructionWriteActions:  "write_actions",
	InstructionWriteMetadata: "write_metadata",
	InstructionGotoTable:     "goto_table",
}

func (t InstructionType) Valid() bool {
	return t < NumInstructionTypes
}

func (t InstructionType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("InstructionType(%d)", uint8(t))
	}
	return instructionNames[t]
}

// InstructionGroup holds at most one instruction of each type. Apply holds
// the actions run immediately, Write the actions merged into the action set
// run at the end of the pipeline.
type InstructionGroup struct {
	present uint32

	Apply        ActionList
	Write        ActionSet
	Metadata     uint64
	MetadataMask uint64
	GotoTable    uint8
	MeterID      uint32
}

func (g *InstructionGroup) add(t InstructionType) error {
	if g.Has(t) {
		return errors.Wrap(ErrDuplicateInstruction, t.String())
	}
	g.present |= 1 << t
	return nil
}

// AddApplyActions adds an apply-actions instruction. An empty list is a
// valid instruction that applies nothing.
func (g *InstructionGroup) AddApplyActions(actions ActionList) error {
	if err := g.add(InstructionApplyActions); err != nil {
		return err
	}
	g.Apply = append(ActionList{}, actions...)
	return nil
}

func (g *InstructionGroup) AddWriteActions(actions ActionList) error {
	if err := g.add(InstructionWriteActions); err != nil {
		return err
	}
	for _, a := range actions {
		g.Write.Write(a)
	}
	return nil
}

func (g *InstructionGroup) AddClearActions() error {
	return g.add(InstructionClearActions)
}

func (g *InstructionGroup) AddWriteMetadata(metadata, mask uint64) error {
	if err := g.add(InstructionWriteMetadata); err != nil {
		return err
	}
	g.Metadata = metadata
	g.MetadataMask = mask
	return nil
}

func (g *InstructionGroup) AddGotoTable(table uint8) error {
	if err := g.add(InstructionGotoTable); err != nil {
		return err
	}
	g.GotoTable = table
	return nil
}

func (g *InstructionGroup) AddMeter(id uint32) error {
	if err := g.add(InstructionMeter); err != nil {
		return err
	}
	g.MeterID = id
	return nil
}

func (g *InstructionGroup) Has(t InstructionType) bool {
	return t.Valid() && g.present&(1<<t) != 0
}

func (g *InstructionGroup) Len() int {
	return bits.OnesCount32(g.present)
}

// Types returns the present instructions in execution order.
func (g *InstructionGroup) Types() []InstructionType {
	var types []InstructionType
	for t := InstructionType(0); t < NumInstructionTypes; t++ {
		if g.Has(t) {
			types = append(types, t)
		}
	}
	return types
}

// Bitmap has bit t set for every present instruction t.
func (g *InstructionGroup) Bitmap() uint32 {
	return g.present
}

func (g InstructionGroup) Equal(o InstructionGroup) bool {
	if g.present != o.present {
		return false
	}
	if len(g.Apply) != len(o.Apply) {
		return false
	}
	for i := range g.Apply {
		if !g.Apply[i].Equal(o.Apply[i]) {
			return false
		}
	}
	return g.Write.Equal(o.Write) &&
		g.Metadata == o.Metadata &&
		g.MetadataMask == o.MetadataMask &&
		g.GotoTable == o.GotoTable &&
		g.MeterID == o.MeterID
}

// String renders the group the way ovs-ofctl prints instructions.
func (g *InstructionGroup) String() string {
	var parts []string
	for _, t := range g.Types() {
		switch t {
		case InstructionMeter:
			parts = append(parts, fmt.Sprintf("meter:%d", g.MeterID))
		case InstructionApplyActions:
			if len(g.Apply) > 0 {
				parts = append(parts, g.Apply.String())
			}
		case InstructionClearActions:
			parts = append(parts, "clear_actions")
		case InstructionWriteActions:
			parts = append(parts, fmt.Sprintf("write_actions(%s)", g.Write.Actions()))
		case InstructionWriteMetadata:
			parts = append(parts, fmt.Sprintf("write_metadata:%#x/%#x", g.Metadata, g.MetadataMask))
		case InstructionGotoTable:
			parts = append(parts, fmt.Sprintf("goto_table:%d", g.GotoTable))
		}
	}

	if len(parts) == 0 {
		return "drop"
	}
	return strings.Join(parts, ",")
}
