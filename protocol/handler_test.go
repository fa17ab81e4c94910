package protocol

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kudryaWW/drawing-app-simple/domain"
)

type mockConn struct {
	id   string
	sent [][]byte
	mu   sync.Mutex
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, data)
	return nil
}

func (m *mockConn) Close() error { return nil }

func (m *mockConn) getSent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}

type mockBroadcaster struct {
	others []broadcastCall
	all    [][]byte
	mu     sync.Mutex
}

type broadcastCall struct {
	senderID string
	data     []byte
}

func (m *mockBroadcaster) BroadcastOthers(senderID string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.others = append(m.others, broadcastCall{senderID: senderID, data: data})
}

func (m *mockBroadcaster) BroadcastAll(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.all = append(m.all, data)
}

func (m *mockBroadcaster) getOthers() []broadcastCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.others
}

func (m *mockBroadcaster) getAll() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.all
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Envelope
		want domain.Stroke
	}{
		{
			name: "well-formed stroke passes through",
			in:   domain.Envelope{StartX: 10, StartY: 10, EndX: 20, EndY: 20, Color: "#ff0000", BrushSize: 5},
			want: domain.Stroke{StartX: 10, StartY: 10, EndX: 20, EndY: 20, Color: "#ff0000", BrushSize: 5},
		},
		{
			name: "empty color gets default",
			in:   domain.Envelope{Color: "", BrushSize: 5},
			want: domain.Stroke{Color: "#000000", BrushSize: 5},
		},
		{
			name: "brush size clamped at both ends",
			in:   domain.Envelope{Color: "#fff", BrushSize: 0},
			want: domain.Stroke{Color: "#fff", BrushSize: 1},
		},
		{
			name: "oversized brush clamped to max",
			in:   domain.Envelope{Color: "#fff", BrushSize: 300},
			want: domain.Stroke{Color: "#fff", BrushSize: 50},
		},
		{
			name: "boundary brush sizes unchanged",
			in:   domain.Envelope{Color: "#fff", BrushSize: 50},
			want: domain.Stroke{Color: "#fff", BrushSize: 50},
		},
		{
			name: "fractional values rounded half away from zero",
			in:   domain.Envelope{StartX: 10.5, StartY: 10.4, EndX: 19.5, EndY: 20.6, Color: "#fff", BrushSize: 12.5},
			want: domain.Stroke{StartX: 11, StartY: 10, EndX: 20, EndY: 21, Color: "#fff", BrushSize: 13},
		},
		{
			name: "coordinates clamped to canvas bounds",
			in:   domain.Envelope{StartX: -50, StartY: 900, EndX: 9999, EndY: -0.4, Color: "#fff", BrushSize: 5},
			want: domain.Stroke{StartX: 0, StartY: 500, EndX: 800, EndY: 0, Color: "#fff", BrushSize: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)

			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.BrushSize, domain.MinBrushSize)
			assert.LessOrEqual(t, got.BrushSize, domain.MaxBrushSize)
			assert.GreaterOrEqual(t, got.StartX, 0)
			assert.LessOrEqual(t, got.StartX, domain.CanvasWidth)
			assert.GreaterOrEqual(t, got.StartY, 0)
			assert.LessOrEqual(t, got.StartY, domain.CanvasHeight)
			assert.NotEmpty(t, got.Color)
		})
	}
}

func TestHandler_SendDrawing(t *testing.T) {
	broadcaster := &mockBroadcaster{}
	handler := NewHandler(broadcaster)
	conn := &mockConn{id: "client1"}

	raw := []byte(`{"type":"SendDrawing","startX":10,"startY":10,"endX":20,"endY":20,"color":"#ff0000","brushSize":5}`)
	handler.Handle(conn, raw)

	others := broadcaster.getOthers()
	require.Len(t, others, 1)
	assert.Equal(t, "client1", others[0].senderID)
	assert.Empty(t, broadcaster.getAll())

	var ev domain.DrawingEvent
	require.NoError(t, json.Unmarshal(others[0].data, &ev))
	assert.Equal(t, domain.TypeReceiveDrawing, ev.Type)
	assert.Equal(t, domain.Stroke{StartX: 10, StartY: 10, EndX: 20, EndY: 20, Color: "#ff0000", BrushSize: 5}, ev.Stroke)
}

func TestHandler_SendDrawing_FloatEncoding(t *testing.T) {
	broadcaster := &mockBroadcaster{}
	handler := NewHandler(broadcaster)
	conn := &mockConn{id: "client1"}

	raw := []byte(`{"type":"SendDrawing","startX":10.7,"startY":3.2,"endX":20.5,"endY":19.9,"color":"","brushSize":75.0}`)
	handler.Handle(conn, raw)

	others := broadcaster.getOthers()
	require.Len(t, others, 1)

	var ev domain.DrawingEvent
	require.NoError(t, json.Unmarshal(others[0].data, &ev))
	assert.Equal(t, domain.Stroke{StartX: 11, StartY: 3, EndX: 21, EndY: 20, Color: "#000000", BrushSize: 50}, ev.Stroke)
}

func TestHandler_ClearCanvas(t *testing.T) {
	broadcaster := &mockBroadcaster{}
	handler := NewHandler(broadcaster)
	conn := &mockConn{id: "client1"}

	handler.Handle(conn, []byte(`{"type":"ClearCanvas"}`))

	all := broadcaster.getAll()
	require.Len(t, all, 1)
	assert.Empty(t, broadcaster.getOthers())

	var ev domain.ClearEvent
	require.NoError(t, json.Unmarshal(all[0], &ev))
	assert.Equal(t, domain.TypeCanvasCleared, ev.Type)
}

func TestHandler_PingPong(t *testing.T) {
	broadcaster := &mockBroadcaster{}
	handler := NewHandler(broadcaster)
	conn := &mockConn{id: "client1"}

	handler.Handle(conn, []byte(`{"type":"ping","timestamp":12345}`))

	sent := conn.getSent()
	require.Len(t, sent, 1)

	var pong domain.PongEvent
	require.NoError(t, json.Unmarshal(sent[0], &pong))
	assert.Equal(t, domain.TypePong, pong.Type)
	assert.Equal(t, int64(12345), pong.Timestamp)

	assert.Empty(t, broadcaster.getOthers())
	assert.Empty(t, broadcaster.getAll())
}

func TestHandler_DroppedInput(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "invalid JSON", raw: []byte("not json")},
		{name: "unknown type", raw: []byte(`{"type":"EraseUniverse"}`)},
		{name: "empty payload", raw: []byte(`{}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broadcaster := &mockBroadcaster{}
			handler := NewHandler(broadcaster)
			conn := &mockConn{id: "client1"}

			handler.Handle(conn, tt.raw)

			assert.Empty(t, conn.getSent())
			assert.Empty(t, broadcaster.getOthers())
			assert.Empty(t, broadcaster.getAll())
		})
	}
}
