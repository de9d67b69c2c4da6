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
)

// TableCapabilities advertises what one table supports, as bitmaps over
// MatchType, ActionType and InstructionType.
type TableCapabilities struct {
	Name          string
	MaxEntries    uint32
	MetadataMatch uint64
	MetadataWrite uint64

	Matches        uint64
	Wildcards      uint64
	WriteSetFields uint64
	ApplySetFields uint64

	WriteActions uint32
	ApplyActions uint32
	Instructions uint32
}

func MatchBitmap(types ...MatchType) uint64 {
	var bitmap uint64
	for _, t := range types {
		if t.Valid() {
			bitmap |= 1 << t
		}
	}
	return bitmap
}

func ActionBitmap(types ...ActionType) uint32 {
	var bitmap uint32
	for _, t := range types {
		if t.Valid() {
			bitmap |= 1 << t
		}
	}
	return bitmap
}

func InstructionBitmap(types ...InstructionType) uint32 {
	var bitmap uint32
	for _, t := range types {
		if t.Valid() {
			bitmap |= 1 << t
		}
	}
	return bitmap
}

// DefaultCapabilities is what every table of the soft switch supports.
func DefaultCapabilities(tableID uint8, maxEntries uint32) TableCapabilities {
	var matches, wildcards, settable uint64
	for t := MatchType(0); t < NumMatchTypes; t++ {
		matches |= 1 << t
		if t.Maskable() {
			wildcards |= 1 << t
		}
		if t.Settable() {
			settable |= 1 << t
		}
	}

	actions := uint32(1)<<NumActionTypes - 1
	instructions := uint32(1)<<NumInstructionTypes - 1

	return TableCapabilities{
		Name:           fmt.Sprintf("table%d", tableID),
		MaxEntries:     maxEntries,
		MetadataMatch:  ^uint64(0),
		MetadataWrite:  ^uint64(0),
		Matches:        matches,
		Wildcards:      wildcards,
		WriteSetFields: settable,
		ApplySetFields: settable,
		WriteActions:   actions,
		ApplyActions:   actions,
		Instructions:   instructions,
	}
}

// Supports reports whether the table can hold entry.
func (c *TableCapabilities) Supports(entry *FlowEntry) bool {
	if entry.Match != nil {
		if entry.Match.Bitmap()&^c.Matches != 0 {
			return false
		}
		for _, t := range entry.Match.Types() {
			pred, _ := entry.Match.Get(t)
			if pred.Masked() && c.Wildcards&(1<<t) == 0 {
				return false
			}
		}
	}

	if entry.Instructions.Bitmap()&^c.Instructions != 0 {
		return false
	}

	for _, a := range entry.Instructions.Apply {
		if c.ApplyActions&(1<<a.Type) == 0 {
			return false
		}
		if a.Type == ActionSetField && c.ApplySetFields&(1<<a.Field) == 0 {
			return false
		}
	}

	for _, a := range entry.Instructions.Write.Actions() {
		if c.WriteActions&(1<<a.Type) == 0 {
			return false
		}
		if a.Type == ActionSetField && c.WriteSetFields&(1<<a.Field) == 0 {
			return false
		}
	}

	return true
}
