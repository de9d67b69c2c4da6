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

// Package metrics registers and exports the prometheus metrics of the
// softswitch daemon.
package metrics

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Kmotiko/gofc/ofprotocol/ofp13"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog"

	"github.com/k-vswitch/softswitch/translation"
)

const handlerTimeout = 10 * time.Second

// NewRegistry returns a registry holding the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Switch are the metrics of the switch outside of the buffer pool.
type Switch struct {
	Translations *prometheus.CounterVec
	Errors       *prometheus.CounterVec
	PortLive     *prometheus.GaugeVec
	PortSpeed    *prometheus.GaugeVec
}

func NewSwitch(reg prometheus.Registerer) *Switch {
	factory := promauto.With(reg)

	return &Switch{
		Translations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "softswitch_translations_total",
				Help: "Total number of translated messages per message kind and result.",
			},
			[]string{"message", "result"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "softswitch_translation_errors_total",
				Help: "Total number of rejected messages per OpenFlow error type and code.",
			},
			[]string{"type", "code"},
		),
		PortLive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "softswitch_port_live",
				Help: "Whether the port is live.",
			},
			[]string{"port", "name"},
		),
		PortSpeed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "softswitch_port_speed_kbps",
				Help: "Current bitrate of the port in kbps.",
			},
			[]string{"port", "name"},
		),
	}
}

// ObserveTranslation counts one translation of a message of kind message.
func (s *Switch) ObserveTranslation(message string, err error) {
	if err == nil {
		s.Translations.WithLabelValues(message, "ok").Inc()
		return
	}

	s.Translations.WithLabelValues(message, "error").Inc()
	if e, ok := translation.AsError(err); ok {
		s.Errors.WithLabelValues(strconv.Itoa(int(e.Type)), strconv.Itoa(int(e.Code))).Inc()
	}
}

// SetPort publishes the state and speed of port desc.
func (s *Switch) SetPort(desc ofp13.OfpPort) {
	no := strconv.FormatUint(uint64(desc.PortNo), 10)
	name := string(desc.Name)

	live := 0.0
	if desc.State&ofp13.OFPPS_LIVE != 0 {
		live = 1
	}
	s.PortLive.WithLabelValues(no, name).Set(live)
	s.PortSpeed.WithLabelValues(no, name).Set(float64(desc.CurrSpeed))
}

// Handler serves the metrics gathered from reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.InstrumentMetricHandler(
		reg,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Timeout: handlerTimeout}),
	)
}

// Serve exports the metrics of reg on /metrics at addr until ctx is done.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "unable to bind metrics address %q", addr)
	}
	return serve(ctx, ln, reg)
}

func serve(ctx context.Context, ln net.Listener, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(reg))

	server := &http.Server{Handler: mux}
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	klog.Infof("exporting prometheus metrics on %s", ln.Addr())
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "error serving metrics")
	}
	return nil
}
