package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dam-inspection-system/internal/domain"
)

const (
	clientBuffer = 16
	writeWait    = 5 * time.Second
)

// alertEnvelope повідомлення, яке отримує панель оператора
type alertEnvelope struct {
	Type  string `json:"type"`
	Alert any    `json:"alert"`
}

type subscriber struct {
	send chan []byte
}

// AlertHub розсилає сповіщення підключеним панелям операторів. Повільний
// клієнт втрачає повідомлення, а не блокує видавця.
type AlertHub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	dropped     int
	log         zerolog.Logger
}

// NewAlertHub створює новий AlertHub
func NewAlertHub(log zerolog.Logger) *AlertHub {
	return &AlertHub{
		subscribers: make(map[*subscriber]struct{}),
		log:         log.With().Str("component", "alert_hub").Logger(),
	}
}

// PublishSeismicAlert розсилає сейсмічне сповіщення
func (h *AlertHub) PublishSeismicAlert(_ context.Context, alert domain.SeismicAlert) error {
	return h.broadcast("seismic_alert", alert)
}

// PublishCriticalFindings розсилає сповіщення про критичні знахідки
func (h *AlertHub) PublishCriticalFindings(_ context.Context, alert domain.CriticalFindingsAlert) error {
	return h.broadcast("critical_findings", alert)
}

// Subscribers кількість підключених панелей
func (h *AlertHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped кількість повідомлень, відкинутих через переповнені буфери
func (h *AlertHub) Dropped() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// HandleConnection обробляє GET /ws/alerts
func (h *AlertHub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("error upgrading connection")
		return
	}

	sub := h.subscribe()
	defer h.unsubscribe(sub)

	done := make(chan struct{})
	go h.writeLoop(conn, sub, done)

	// Клієнт нічого не надсилає; читання потрібне лише для виявлення закриття
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	close(done)
	conn.Close()
}

func (h *AlertHub) writeLoop(conn *websocket.Conn, sub *subscriber, done <-chan struct{}) {
	for {
		select {
		case msg := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Warn().Err(err).Msg("error sending alert")
				conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}

func (h *AlertHub) subscribe() *subscriber {
	sub := &subscriber{send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *AlertHub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	delete(h.subscribers, sub)
	h.mu.Unlock()
}

func (h *AlertHub) broadcast(kind string, alert any) error {
	data, err := json.Marshal(alertEnvelope{Type: kind, Alert: alert})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		select {
		case sub.send <- data:
		default:
			h.dropped++
			h.log.Debug().Str("type", kind).Msg("subscriber buffer full, alert dropped")
		}
	}
	return nil
}
