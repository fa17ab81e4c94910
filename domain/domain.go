package domain

// Logical canvas dimensions. All clients render strokes in this coordinate
// space regardless of their local canvas size, so the server clamps
// coordinates into it before fan-out.
const (
	CanvasWidth  = 800
	CanvasHeight = 500
)

// Brush size bounds, inclusive. Out-of-range values are clamped, not
// rejected: a bad stroke must never drop the connection.
const (
	MinBrushSize = 1
	MaxBrushSize = 50
)

// DefaultColor replaces an absent or empty stroke color.
const DefaultColor = "#000000"

// Wire message type tags. Inbound names match the client-side hub contract
// (SendDrawing/ClearCanvas), outbound names match the events clients
// subscribe to.
const (
	TypeSendDrawing      = "SendDrawing"
	TypeClearCanvas      = "ClearCanvas"
	TypeReceiveDrawing   = "ReceiveDrawing"
	TypeCanvasCleared    = "CanvasCleared"
	TypeUserCountUpdated = "UserCountUpdated"
	TypePing             = "ping"
	TypePong             = "pong"
)

// Envelope is the decoded form of any inbound message. Coordinates and brush
// size are float64 because observed clients encode them as either integers
// or floats.
type Envelope struct {
	Type      string  `json:"type"`
	StartX    float64 `json:"startX"`
	StartY    float64 `json:"startY"`
	EndX      float64 `json:"endX"`
	EndY      float64 `json:"endY"`
	Color     string  `json:"color"`
	BrushSize float64 `json:"brushSize"`
	Timestamp int64   `json:"timestamp,omitempty"`
}

// Stroke is one normalized drawing segment. It is a transient message, never
// stored server-side.
type Stroke struct {
	StartX    int    `json:"startX"`
	StartY    int    `json:"startY"`
	EndX      int    `json:"endX"`
	EndY      int    `json:"endY"`
	Color     string `json:"color"`
	BrushSize int    `json:"brushSize"`
}

// DrawingEvent is the outbound ReceiveDrawing message.
type DrawingEvent struct {
	Type string `json:"type"`
	Stroke
}

// ClearEvent is the outbound CanvasCleared signal. No payload.
type ClearEvent struct {
	Type string `json:"type"`
}

// CountEvent carries the presence count to every connection.
type CountEvent struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// PongEvent answers an application-level ping on the same connection.
type PongEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// Connection is one live client session over the persistent channel. Send
// must not block: transports queue the data and report an error if the
// client cannot keep up.
type Connection interface {
	ID() string
	Send(data []byte) error
	Close() error
}

// Registry tracks the live connection set. The transport adapter invokes the
// hooks once per lifecycle transition; the registry tolerates duplicates.
// Every effective transition triggers a presence-count broadcast.
type Registry interface {
	OnConnect(conn Connection)
	OnDisconnect(connID string, reason error)
	Count() int
}

// Broadcaster fans an encoded event out to connections. Delivery is
// best-effort, at most once per recipient; a failed recipient never aborts
// the rest.
type Broadcaster interface {
	BroadcastOthers(senderID string, data []byte)
	BroadcastAll(data []byte)
}

// MessageHandler processes one raw inbound message from a connection.
type MessageHandler interface {
	Handle(conn Connection, data []byte)
}
