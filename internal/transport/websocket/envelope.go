package websocket

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/scene"
	"github.com/zeusync/trackrun/internal/host"
)

// Message types. The server sends snapshot, collision and hello; clients
// send key and resize.
const (
	TypeHello     = "hello"
	TypeSnapshot  = "snapshot"
	TypeCollision = "collision"
	TypeKey       = "key"
	TypeResize    = "resize"
)

var ErrInvalidMessage = errors.New("invalid message")

type Envelope struct {
	Type    string          `json:"t"`
	Payload json.RawMessage `json:"p,omitempty"`
}

type Hello struct {
	ClientID string   `json:"client_id"`
	Scene    string   `json:"scene"`
	Keys     []string `json:"keys,omitempty"`
}

type Key struct {
	Key string `json:"key"`
}

type Collision struct {
	Frame     uint64  `json:"frame"`
	Elapsed   float64 `json:"elapsed"`
	Best      float64 `json:"best"`
	Hits      int     `json:"hits"`
	NearestID string  `json:"nearest_id,omitempty"`
}

func encode(typ string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", typ)
	}
	return json.Marshal(Envelope{Type: typ, Payload: raw})
}

func encodeSnapshot(snap scene.Snapshot) ([]byte, error) {
	return encode(TypeSnapshot, snap)
}

func encodeCollision(ev loop.CollisionEvent) ([]byte, error) {
	return encode(TypeCollision, Collision{
		Frame:     ev.Frame,
		Elapsed:   ev.Elapsed,
		Best:      ev.Best,
		Hits:      ev.Hits,
		NearestID: ev.NearestID,
	})
}

// inbound is a decoded client message; exactly one field is set.
type inbound struct {
	key    string
	resize *host.Size
}

func decodeInbound(data []byte) (inbound, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return inbound{}, errors.Wrap(ErrInvalidMessage, err.Error())
	}
	switch env.Type {
	case TypeKey:
		var k Key
		if err := json.Unmarshal(env.Payload, &k); err != nil || k.Key == "" {
			return inbound{}, errors.Wrap(ErrInvalidMessage, "key payload")
		}
		return inbound{key: k.Key}, nil
	case TypeResize:
		var sz host.Size
		if err := json.Unmarshal(env.Payload, &sz); err != nil {
			return inbound{}, errors.Wrap(ErrInvalidMessage, "resize payload")
		}
		return inbound{resize: &sz}, nil
	default:
		return inbound{}, errors.Wrapf(ErrInvalidMessage, "type %q", env.Type)
	}
}
