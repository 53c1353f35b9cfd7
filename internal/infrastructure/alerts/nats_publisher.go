package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"dam-inspection-system/internal/domain"
)

// DefaultSubjectPrefix префікс тем сповіщень за замовчуванням
const DefaultSubjectPrefix = "dam.alerts"

const (
	seismicSubject  = "seismic"
	findingsSubject = "critical_findings"
)

// conn частина *nats.Conn, потрібна видавцю
type conn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher публікує сповіщення у NATS. Publish клієнта лише буферизує
// повідомлення, тому виклики не чекають на мережу.
type NATSPublisher struct {
	nc     conn
	prefix string
	log    zerolog.Logger
}

// Connect встановлює з'єднання з NATS з обробниками стану в журналі
func Connect(url, name string, log zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// NewNATSPublisher створює новий екземпляр NATSPublisher
func NewNATSPublisher(nc conn, prefix string, log zerolog.Logger) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{
		nc:     nc,
		prefix: prefix,
		log:    log.With().Str("component", "nats_alerts").Logger(),
	}
}

// PublishSeismicAlert публікує сейсмічне сповіщення
func (p *NATSPublisher) PublishSeismicAlert(_ context.Context, alert domain.SeismicAlert) error {
	return p.publish(seismicSubject, alert)
}

// PublishCriticalFindings публікує сповіщення про критичні знахідки
func (p *NATSPublisher) PublishCriticalFindings(_ context.Context, alert domain.CriticalFindingsAlert) error {
	return p.publish(findingsSubject, alert)
}

func (p *NATSPublisher) subject(kind string) string {
	return p.prefix + "." + kind
}

func (p *NATSPublisher) publish(kind string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s alert: %w", kind, err)
	}

	subject := p.subject(kind)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	p.log.Debug().Str("subject", subject).Int("bytes", len(data)).Msg("alert published")
	return nil
}
