package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "powcaptcha"

	difficultyLabel = "difficulty"
	outcomeLabel    = "outcome"
	routeLabel      = "route"
	codeLabel       = "code"
)

// Prometheus records captcha activity on its own registry.
type Prometheus struct {
	reg *prometheus.Registry

	challengesIssued *prometheus.CounterVec
	verifications    *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	tcpConnections   prometheus.Gauge
}

func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())

	p := &Prometheus{
		reg: reg,
		challengesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "challenges_issued_total",
			Help:      "Total number of challenges handed out",
		}, []string{difficultyLabel}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "verifications_total",
			Help:      "Total number of submitted solutions by outcome",
		}, []string{outcomeLabel}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{routeLabel, codeLabel}),
		tcpConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tcp",
			Name:      "active_connections",
			Help:      "Number of open line-protocol connections",
		}),
	}
	reg.MustRegister(p.challengesIssued, p.verifications, p.httpRequests, p.tcpConnections)
	return p
}

func (p *Prometheus) ChallengeIssued(difficulty string) {
	p.challengesIssued.WithLabelValues(difficulty).Inc()
}

func (p *Prometheus) VerificationFinished(outcome string) {
	p.verifications.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) HTTPRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	p.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (p *Prometheus) ConnectionOpened() { p.tcpConnections.Inc() }

func (p *Prometheus) ConnectionClosed() { p.tcpConnections.Dec() }

func (p *Prometheus) Registry() *prometheus.Registry { return p.reg }

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{
		Registry: p.reg,
	})
}
