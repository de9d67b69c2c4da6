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
	"k8s.io/klog"

	"github.com/k-vswitch/softswitch/pipeline"
)

// flowModFlags has every OFPFF flag defined by OpenFlow 1.3.
const flowModFlags = ofp13.OFPFF_SEND_FLOW_REM | ofp13.OFPFF_CHECK_OVERLAP | ofp13.OFPFF_RESET_COUNTS |
	ofp13.OFPFF_NO_PKT_COUNTS | ofp13.OFPFF_NO_BYT_COUNTS

// ToPipelineEntry translates a flow-mod into a flow entry. Nothing is
// returned unless every match field and instruction translates. The
// instructions of delete commands are ignored.
func (t *Translator) ToPipelineEntry(mod *ofp13.OfpFlowMod) (*pipeline.FlowEntry, error) {
	if mod == nil {
		return nil, malformed(ofp13.OFPET_BAD_REQUEST, ofp13.OFPBRC_BAD_LEN, "missing flow-mod")
	}

	if mod.Command > ofp13.OFPFC_DELETE_STRICT {
		return nil, malformed(ofp13.OFPET_FLOW_MOD_FAILED, ofp13.OFPFMFC_BAD_COMMAND, "command %d", mod.Command)
	}

	deleting := mod.Command == ofp13.OFPFC_DELETE || mod.Command == ofp13.OFPFC_DELETE_STRICT
	if !deleting && mod.TableId > ofp13.OFPTT_MAX {
		return nil, malformed(ofp13.OFPET_FLOW_MOD_FAILED, ofp13.OFPFMFC_BAD_TABLE_ID, "table %d", mod.TableId)
	}

	if mod.Flags&^flowModFlags != 0 {
		return nil, malformed(ofp13.OFPET_FLOW_MOD_FAILED, ofp13.OFPFMFC_BAD_FLAGS, "flags %#x", mod.Flags)
	}

	match, err := t.ToPipelineMatch(mod.Match)
	if err != nil {
		klog.V(5).Infof("rejecting flow-mod in table %d: %v", mod.TableId, err)
		return nil, err
	}

	entry := pipeline.NewFlowEntry().
		WithTable(mod.TableId).
		WithPriority(mod.Priority).
		WithCookie(mod.Cookie, mod.CookieMask).
		WithIdleTimeout(mod.IdleTimeout).
		WithHardTimeout(mod.HardTimeout).
		WithFlags(mod.Flags).
		WithMatch(match)
	entry.BufferID = mod.BufferId
	entry.OutPort = mod.OutPort
	entry.OutGroup = mod.OutGroup

	if !deleting {
		entry.Instructions, err = t.ToPipelineInstructions(mod.Instructions, mod.TableId)
		if err != nil {
			klog.V(5).Infof("rejecting flow-mod in table %d: %v", mod.TableId, err)
			return nil, err
		}
	}

	klog.V(5).Infof("translated flow-mod command %d: %s", mod.Command, entry)
	return entry, nil
}

// ToWireFlowMod builds the flow-mod that carries entry with command.
func (t *Translator) ToWireFlowMod(entry *pipeline.FlowEntry, command uint8) (*ofp13.OfpFlowMod, error) {
	match, err := t.ToWireMatch(entry.Match)
	if err != nil {
		return nil, err
	}

	mod := &ofp13.OfpFlowMod{
		Header:      t.header(ofp13.OFPT_FLOW_MOD),
		Cookie:      entry.Cookie,
		CookieMask:  entry.CookieMask,
		TableId:     entry.TableID,
		Command:     command,
		IdleTimeout: entry.IdleTimeout,
		HardTimeout: entry.HardTimeout,
		Priority:    entry.Priority,
		BufferId:    entry.BufferID,
		OutPort:     entry.OutPort,
		OutGroup:    entry.OutGroup,
		Flags:       entry.Flags,
		Match:       match,
	}

	switch command {
	case ofp13.OFPFC_ADD, ofp13.OFPFC_MODIFY, ofp13.OFPFC_MODIFY_STRICT:
		mod.Instructions, err = t.ToWireInstructions(entry)
		if err != nil {
			return nil, err
		}
	case ofp13.OFPFC_DELETE, ofp13.OFPFC_DELETE_STRICT:
		mod.Instructions = make([]ofp13.OfpInstruction, 0)
	default:
		return nil, malformed(ofp13.OFPET_FLOW_MOD_FAILED, ofp13.OFPFMFC_BAD_COMMAND, "command %d", command)
	}

	return mod, nil
}

// header is the header of a message built by the translator. The xid is
// left to the connection that sends the message.
func (t *Translator) header(msgType uint8) ofp13.OfpHeader {
	return ofp13.OfpHeader{Version: t.version, Type: msgType, Length: 8}
}
