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

package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/Kmotiko/gofc/ofprotocol/ofp13"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k-vswitch/softswitch/translation"
)

func Test_ObserveTranslation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSwitch(reg)

	tr, err := translation.New(translation.Version13)
	require.NoError(t, err)

	_, err = tr.ToPipelineEntry(nil)
	require.Error(t, err)

	m.ObserveTranslation("flow_mod", nil)
	m.ObserveTranslation("flow_mod", nil)
	m.ObserveTranslation("flow_mod", err)
	m.ObserveTranslation("group_mod", errors.New("not a translation error"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Translations.WithLabelValues("flow_mod", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Translations.WithLabelValues("flow_mod", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Translations.WithLabelValues("group_mod", "error")))

	// only the translation error carries a type and code
	assert.Equal(t, 1, testutil.CollectAndCount(m.Errors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("1", "6")))
}

func Test_SetPort(t *testing.T) {
	m := NewSwitch(prometheus.NewRegistry())

	m.SetPort(ofp13.OfpPort{PortNo: 1, Name: []byte("eth0"), State: ofp13.OFPPS_LIVE, CurrSpeed: 10000000})
	m.SetPort(ofp13.OfpPort{PortNo: 2, Name: []byte("eth1"), State: ofp13.OFPPS_LINK_DOWN})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PortLive.WithLabelValues("1", "eth0")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PortLive.WithLabelValues("2", "eth1")))
	assert.Equal(t, 1e7, testutil.ToFloat64(m.PortSpeed.WithLabelValues("1", "eth0")))
}

func Test_Serve(t *testing.T) {
	reg := NewRegistry()
	m := NewSwitch(reg)
	m.ObserveTranslation("flow_mod", nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- serve(ctx, ln, reg)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `softswitch_translations_total{message="flow_mod",result="ok"} 1`))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))

	cancel()
	assert.NoError(t, <-done)
}
