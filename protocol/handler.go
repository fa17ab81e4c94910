package protocol

import (
	"encoding/json"
	"log/slog"
	"math"

	"github.com/kudryaWW/drawing-app-simple/domain"
)

// Handler turns raw inbound messages into normalized fan-outs. Targeting is
// asymmetric: strokes go to everyone but the sender (who already rendered
// locally), clears go to everyone including the sender.
type Handler struct {
	broadcaster domain.Broadcaster
}

func NewHandler(b domain.Broadcaster) *Handler {
	return &Handler{broadcaster: b}
}

// Handle never reports an error back to the connection: malformed drawing
// input from a remote peer is an expected condition, normalized or dropped
// locally.
func (h *Handler) Handle(conn domain.Connection, data []byte) {
	var msg domain.Envelope
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("invalid message", "clientId", conn.ID(), "error", err)
		return
	}

	switch msg.Type {
	case domain.TypePing:
		pong := domain.PongEvent{Type: domain.TypePong, Timestamp: msg.Timestamp}
		if resp, err := json.Marshal(pong); err == nil {
			conn.Send(resp)
		}

	case domain.TypeSendDrawing:
		event := domain.DrawingEvent{
			Type:   domain.TypeReceiveDrawing,
			Stroke: Normalize(msg),
		}
		out, err := json.Marshal(event)
		if err != nil {
			slog.Warn("marshal error", "clientId", conn.ID(), "error", err)
			return
		}
		h.broadcaster.BroadcastOthers(conn.ID(), out)

	case domain.TypeClearCanvas:
		out, err := json.Marshal(domain.ClearEvent{Type: domain.TypeCanvasCleared})
		if err != nil {
			slog.Warn("marshal error", "clientId", conn.ID(), "error", err)
			return
		}
		h.broadcaster.BroadcastAll(out)

	default:
		slog.Debug("unknown message type", "clientId", conn.ID(), "type", msg.Type)
	}
}

// Normalize applies the stroke policy in order: empty color gets the
// default, brush size is clamped into [MinBrushSize, MaxBrushSize], and each
// coordinate is rounded half away from zero (math.Round) then clamped into
// the logical canvas. Each step is independent and non-fatal.
func Normalize(msg domain.Envelope) domain.Stroke {
	color := msg.Color
	if color == "" {
		color = domain.DefaultColor
	}

	return domain.Stroke{
		StartX:    clampCoord(msg.StartX, domain.CanvasWidth),
		StartY:    clampCoord(msg.StartY, domain.CanvasHeight),
		EndX:      clampCoord(msg.EndX, domain.CanvasWidth),
		EndY:      clampCoord(msg.EndY, domain.CanvasHeight),
		Color:     color,
		BrushSize: clampBrush(msg.BrushSize),
	}
}

// clampCoord bounds-checks before converting so non-finite values never hit
// an int conversion. NaN lands on zero.
func clampCoord(v float64, max int) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > float64(max) {
		return max
	}
	return int(math.Round(v))
}

func clampBrush(v float64) int {
	if math.IsNaN(v) || v < domain.MinBrushSize {
		return domain.MinBrushSize
	}
	if v > domain.MaxBrushSize {
		return domain.MaxBrushSize
	}
	return int(math.Round(v))
}
