package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dam-inspection-system/internal/application"
	"dam-inspection-system/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Доступ до шини обмежено мережею станції
	},
}

var validate = validator.New()

// sensorMessage конверт повідомлення від сенсорної станції
type sensorMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SensorHandler обробляє WebSocket з'єднання сенсорних станцій
// (п'єзометри, сейсмостанції, рівнеміри)
type SensorHandler struct {
	gauge         *application.StabilityGauge
	connections   map[string]*websocket.Conn
	connectionsMu sync.Mutex
	log           zerolog.Logger
}

// NewSensorHandler створює новий SensorHandler
func NewSensorHandler(gauge *application.StabilityGauge, log zerolog.Logger) *SensorHandler {
	return &SensorHandler{
		gauge:       gauge,
		connections: make(map[string]*websocket.Conn),
		log:         log.With().Str("component", "sensor_ws").Logger(),
	}
}

// HandleConnection оброблює WebSocket з'єднання. Повторне підключення тієї
// ж станції закриває попереднє з'єднання.
func (h *SensorHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	stationID, err := authenticateStation(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Str("station_id", stationID).Msg("error upgrading connection")
		return
	}

	h.connectionsMu.Lock()
	if prev, ok := h.connections[stationID]; ok {
		prev.Close()
	}
	h.connections[stationID] = conn
	h.connectionsMu.Unlock()

	h.log.Info().Str("station_id", stationID).Msg("sensor station connected")

	h.handleMessages(context.WithoutCancel(r.Context()), stationID, conn)
}

// Connected кількість підключених станцій
func (h *SensorHandler) Connected() int {
	h.connectionsMu.Lock()
	defer h.connectionsMu.Unlock()
	return len(h.connections)
}

// handleMessages читає повідомлення станції до закриття з'єднання
func (h *SensorHandler) handleMessages(ctx context.Context, stationID string, conn *websocket.Conn) {
	defer func() {
		conn.Close()

		h.connectionsMu.Lock()
		if h.connections[stationID] == conn {
			delete(h.connections, stationID)
		}
		h.connectionsMu.Unlock()

		h.log.Info().Str("station_id", stationID).Msg("sensor station disconnected")
	}()

	conn.SetPingHandler(func(string) error {
		return conn.WriteControl(websocket.PongMessage, []byte{}, time.Now().Add(time.Second))
	})

	for {
		messageType, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Str("station_id", stationID).Msg("websocket error")
			}
			return
		}

		if messageType != websocket.TextMessage {
			h.sendError(conn, "only JSON text messages are supported")
			continue
		}

		reply, err := h.handleTextMessage(ctx, stationID, p)
		if err != nil {
			h.log.Warn().Err(err).Str("station_id", stationID).Msg("rejected sensor message")
			h.sendError(conn, err.Error())
			continue
		}
		h.sendMessage(conn, reply)
	}
}

// handleTextMessage розбирає повідомлення і передає показник до gauge
func (h *SensorHandler) handleTextMessage(ctx context.Context, stationID string, data []byte) (any, error) {
	var message sensorMessage
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, err
	}

	switch message.Type {
	case "heartbeat":
		return map[string]any{
			"type": "heartbeat_ack",
			"time": time.Now().Unix(),
		}, nil

	case "piezometer":
		var reading domain.PiezometerData
		if err := decodePayload(message.Payload, &reading); err != nil {
			return nil, err
		}
		if err := validate.Struct(reading); err != nil {
			return nil, err
		}
		return gaugeReply(h.gauge.IngestPiezometer(ctx, reading)), nil

	case "seismic":
		var reading domain.SeismicData
		if err := decodePayload(message.Payload, &reading); err != nil {
			return nil, err
		}
		if reading.StationID == "" {
			reading.StationID = stationID
		}
		if err := validate.Struct(reading); err != nil {
			return nil, err
		}
		return gaugeReply(h.gauge.IngestSeismic(ctx, reading)), nil

	case "water_level":
		var reading domain.WaterLevelData
		if err := decodePayload(message.Payload, &reading); err != nil {
			return nil, err
		}
		return gaugeReply(h.gauge.IngestWaterLevel(ctx, reading)), nil

	case "":
		return nil, errors.New("missing message type")
	}

	return nil, errors.New("unknown message type: " + message.Type)
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("missing payload")
	}
	return json.Unmarshal(raw, v)
}

func gaugeReply(snapshot domain.DamStabilityGauge) map[string]any {
	return map[string]any{
		"type":  "gauge",
		"gauge": snapshot,
	}
}

// authenticateStation визначає станцію за токеном у запиті.
// Токен є ідентифікатором станції.
func authenticateStation(r *http.Request) (string, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		return "", errors.New("missing authentication token")
	}
	return token, nil
}

func (h *SensorHandler) sendError(conn *websocket.Conn, msg string) {
	h.sendMessage(conn, map[string]any{"type": "error", "error": msg})
}

// sendMessage відправляє повідомлення станції. Пише лише горутина читання
// цього з'єднання.
func (h *SensorHandler) sendMessage(conn *websocket.Conn, message any) {
	if err := conn.WriteJSON(message); err != nil {
		h.log.Warn().Err(err).Msg("error sending message")
	}
}
