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

package main

import (
	"github.com/Kmotiko/gofc/ofprotocol/ofp13"
	"github.com/pkg/errors"
	"k8s.io/klog"

	"github.com/k-vswitch/softswitch/config"
	"github.com/k-vswitch/softswitch/metrics"
	"github.com/k-vswitch/softswitch/pipeline"
	"github.com/k-vswitch/softswitch/translation"
)

// installTables advertises the capabilities of every table and builds its
// table-miss entry through the wire codec. It returns the resulting
// pipeline.
func installTables(tr *translation.Translator, of config.OpenFlowConfig, m *metrics.Switch) (*pipeline.EntriesBuffer, error) {
	entries := pipeline.NewEntriesBuffer()

	for id := 0; id < of.Tables; id++ {
		table := uint8(id)

		features := tr.ToWireTableFeatures(table, pipeline.DefaultCapabilities(table, of.TableSize))
		caps, err := tr.ToPipelineCapabilities(features)
		m.ObserveTranslation("table_features", err)
		if err != nil {
			return nil, errors.Wrapf(err, "error advertising table %d", table)
		}

		miss, err := tableMiss(table, id == of.Tables-1)
		if err != nil {
			return nil, err
		}
		if !caps.Supports(miss) {
			return nil, errors.Errorf("table %d cannot hold %q", table, miss)
		}

		mod, err := tr.ToWireFlowMod(miss, ofp13.OFPFC_ADD)
		if err == nil {
			miss, err = tr.ToPipelineEntry(mod)
		}
		m.ObserveTranslation("flow_mod", err)
		if err != nil {
			return nil, errors.Wrapf(err, "error installing table-miss entry of table %d", table)
		}

		entries.AddEntry(miss)
	}

	if klog.V(2) {
		klog.Infof("pipeline:\n%s", entries)
	}

	return entries, nil
}

// tableMiss sends unmatched packets to the next table, or to the controller
// from the last one.
func tableMiss(table uint8, last bool) (*pipeline.FlowEntry, error) {
	entry := pipeline.NewFlowEntry().
		WithTable(table).
		WithPriority(0)

	var err error
	if last {
		err = entry.Instructions.AddApplyActions(pipeline.ActionList{
			pipeline.Output(ofp13.OFPP_CONTROLLER, ofp13.OFPCML_NO_BUFFER),
		})
	} else {
		err = entry.Instructions.AddGotoTable(table + 1)
	}

	return entry, err
}
