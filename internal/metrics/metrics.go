// Package metrics defines the Prometheus collectors used by remotemouse.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every collector.
const Namespace = "remotemouse"

// Transport counts connection lifecycle and outbound traffic.
type Transport struct {
	connectAttempts prometheus.Counter
	reconnects      prometheus.Counter
	sent            prometheus.Counter
	sentBytes       prometheus.Counter
	dropped         prometheus.Counter
	connected       prometheus.Gauge
}

// Dispatcher counts commands leaving the dispatcher.
type Dispatcher struct {
	commands  *prometheus.CounterVec
	coalesced prometheus.Counter
}

// Host counts commands applied on the receiving side.
type Host struct {
	commands     *prometheus.CounterVec
	decodeErrors prometheus.Counter
	applyErrors  prometheus.Counter
	connections  prometheus.Gauge
}

// factory returns a promauto factory, using a private registry when reg is nil.
func factory(reg prometheus.Registerer) promauto.Factory {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return promauto.With(reg)
}

// NewTransport registers transport collectors on reg.
func NewTransport(reg prometheus.Registerer) *Transport {
	f := factory(reg)
	return &Transport{
		connectAttempts: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "transport", Name: "connect_attempts_total",
			Help: "Connection attempts, including reconnects.",
		}),
		reconnects: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "transport", Name: "reconnects_scheduled_total",
			Help: "Reconnection timers scheduled after a failure.",
		}),
		sent: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "transport", Name: "messages_sent_total",
			Help: "Binary messages written to the channel.",
		}),
		sentBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "transport", Name: "bytes_sent_total",
			Help: "Bytes written to the channel.",
		}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "transport", Name: "messages_dropped_total",
			Help: "Messages dropped because the channel was not connected.",
		}),
		connected: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Subsystem: "transport", Name: "connected",
			Help: "1 while the channel is connected.",
		}),
	}
}

// ConnectAttempt counts one connection attempt.
func (m *Transport) ConnectAttempt() {
	if m != nil {
		m.connectAttempts.Inc()
	}
}

// ReconnectScheduled counts one scheduled reconnection.
func (m *Transport) ReconnectScheduled() {
	if m != nil {
		m.reconnects.Inc()
	}
}

// Sent counts one written message of n bytes.
func (m *Transport) Sent(n int) {
	if m != nil {
		m.sent.Inc()
		m.sentBytes.Add(float64(n))
	}
}

// Dropped counts one dropped message.
func (m *Transport) Dropped() {
	if m != nil {
		m.dropped.Inc()
	}
}

// SetConnected records whether the channel is connected.
func (m *Transport) SetConnected(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}

// NewDispatcher registers dispatcher collectors on reg.
func NewDispatcher(reg prometheus.Registerer) *Dispatcher {
	f := factory(reg)
	return &Dispatcher{
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "dispatch", Name: "commands_total",
			Help: "Commands handed to the transport, by opcode.",
		}, []string{"op"}),
		coalesced: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "dispatch", Name: "moves_coalesced_total",
			Help: "Move intents merged into a pending frame delta.",
		}),
	}
}

// Command counts one command by opcode name.
func (m *Dispatcher) Command(op string) {
	if m != nil {
		m.commands.WithLabelValues(op).Inc()
	}
}

// Coalesced counts one move merged into the pending delta.
func (m *Dispatcher) Coalesced() {
	if m != nil {
		m.coalesced.Inc()
	}
}

// NewHost registers host collectors on reg.
func NewHost(reg prometheus.Registerer) *Host {
	f := factory(reg)
	return &Host{
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "host", Name: "commands_total",
			Help: "Commands decoded and applied, by opcode.",
		}, []string{"op"}),
		decodeErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "host", Name: "decode_errors_total",
			Help: "Frames that failed to decode.",
		}),
		applyErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Subsystem: "host", Name: "apply_errors_total",
			Help: "Commands the injector failed to apply.",
		}),
		connections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Subsystem: "host", Name: "connections",
			Help: "Open client connections.",
		}),
	}
}

// Command counts one applied command by opcode name.
func (m *Host) Command(op string) {
	if m != nil {
		m.commands.WithLabelValues(op).Inc()
	}
}

// DecodeError counts one undecodable frame.
func (m *Host) DecodeError() {
	if m != nil {
		m.decodeErrors.Inc()
	}
}

// ApplyError counts one injector failure.
func (m *Host) ApplyError() {
	if m != nil {
		m.applyErrors.Inc()
	}
}

// ConnOpened increments the open connection gauge.
func (m *Host) ConnOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

// ConnClosed decrements the open connection gauge.
func (m *Host) ConnClosed() {
	if m != nil {
		m.connections.Dec()
	}
}
