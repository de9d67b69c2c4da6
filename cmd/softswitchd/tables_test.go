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
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-vswitch/softswitch/config"
	"github.com/k-vswitch/softswitch/metrics"
	"github.com/k-vswitch/softswitch/translation"
)

func Test_InstallTables(t *testing.T) {
	tests := []struct {
		name     string
		version  uint8
		tables   int
		pipeline string
	}{
		{
			name:     "single table",
			version:  translation.Version13,
			tables:   1,
			pipeline: "table=0 priority=0 actions=output:4294967293\n",
		},
		{
			name:    "chained tables",
			version: translation.Version12,
			tables:  3,
			pipeline: "table=0 priority=0 actions=goto_table:1\n" +
				"table=1 priority=0 actions=goto_table:2\n" +
				"table=2 priority=0 actions=output:4294967293\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tr, err := translation.New(test.version)
			require.NoError(t, err)

			m := metrics.NewSwitch(prometheus.NewRegistry())

			entries, err := installTables(tr, config.OpenFlowConfig{Tables: test.tables, TableSize: 1024}, m)
			require.NoError(t, err)

			if entries.String() != test.pipeline {
				t.Logf("actual pipeline: %q", entries.String())
				t.Logf("expected pipeline: %q", test.pipeline)
				t.Error("unexpected pipeline")
			}

			assert.Equal(t, float64(test.tables), testutil.ToFloat64(m.Translations.WithLabelValues("flow_mod", "ok")))
			assert.Equal(t, float64(test.tables), testutil.ToFloat64(m.Translations.WithLabelValues("table_features", "ok")))
		})
	}
}
