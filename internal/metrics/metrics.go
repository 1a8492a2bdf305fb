// Package metrics содержит счётчики prometheus для входа, регистрации и решений о доступе.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Значения метки result.
const (
	ResultSuccess   = "success"
	ResultInvalid   = "invalid_credentials"
	ResultThrottled = "throttled"
	ResultDuplicate = "duplicate"
	ResultRejected  = "validation"
	ResultError     = "error"
)

// Metrics набор счётчиков сервиса.
type Metrics struct {
	Login           *prometheus.CounterVec
	Register        *prometheus.CounterVec
	AccessDecisions *prometheus.CounterVec
}

// New создаёт счётчики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Login: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		Register: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_register_total",
			Help: "Registration attempts by result.",
		}, []string{"result"}),
		AccessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_access_decisions_total",
			Help: "Access gate decisions by requirement and deny reason.",
		}, []string{"requirement", "reason"}),
	}
	reg.MustRegister(m.Login, m.Register, m.AccessDecisions)
	return m
}

// ObserveLogin учитывает попытку входа.
func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.Login.WithLabelValues(result).Inc()
}

// ObserveRegister учитывает попытку регистрации.
func (m *Metrics) ObserveRegister(result string) {
	if m == nil {
		return
	}
	m.Register.WithLabelValues(result).Inc()
}

// ObserveDecision учитывает решение о доступе.
func (m *Metrics) ObserveDecision(requirement, reason string) {
	if m == nil {
		return
	}
	m.AccessDecisions.WithLabelValues(requirement, reason).Inc()
}
