package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons for FramesDropped
const (
	DropSelfEcho   = "self_echo"
	DropOutOfScope = "out_of_scope"
	DropDuplicate  = "duplicate"
	DropMalformed  = "malformed"
)

var (
	FramesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkup_chat_frames_received_total",
		Help: "Inbound chat socket frames by kind.",
	}, []string{"kind"})

	FramesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkup_chat_frames_dropped_total",
		Help: "Inbound chat frames that did not enter the message log.",
	}, []string{"reason"})

	Reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkup_chat_reconnects_total",
		Help: "Scheduled chat socket reconnection attempts.",
	})

	Sends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkup_chat_sends_total",
		Help: "Outbound chat messages by result.",
	}, []string{"result"})

	DevserverClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linkup_devserver_ws_clients",
		Help: "Connected devserver websocket clients.",
	})

	DevserverMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkup_devserver_messages_total",
		Help: "Messages stored by the devserver.",
	})
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
