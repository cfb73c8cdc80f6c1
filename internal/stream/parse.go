package stream

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotNotification marks frames that are well-formed JSON-RPC but not a
// logsNotification (acks, unrelated methods). Callers drop these and keep
// reading.
var ErrNotNotification = errors.New("not a logs notification")

// Ack is the one-time reply to a logsSubscribe request.
type Ack struct {
	RequestID    int64
	Subscription uint64
}

// Notification is the parsed view of one logsNotification frame.
type Notification struct {
	Subscription uint64
	Slot         uint64
	Signature    string
	Logs         []string
}

type envelope struct {
	Jsonrpc string           `json:"jsonrpc"`
	ID      *int64           `json:"id"`
	Result  *json.RawMessage `json:"result"`
	Method  string           `json:"method"`
	Params  *json.RawMessage `json:"params"`
	Error   *rpcError        `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type notificationParams struct {
	Subscription uint64 `json:"subscription"`
	Result       struct {
		Context struct {
			Slot uint64 `json:"slot"`
		} `json:"context"`
		Value struct {
			Signature string   `json:"signature"`
			Logs      []string `json:"logs"`
		} `json:"value"`
	} `json:"result"`
}

// ParseAck parses the subscription acknowledgment. The server correlates it
// to the subscribe request by id and returns the subscription number.
func ParseAck(raw []byte) (Ack, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Ack{}, fmt.Errorf("parse ack: %w", err)
	}
	if env.Error != nil {
		return Ack{}, fmt.Errorf("subscribe rejected: %s (code %d)", env.Error.Message, env.Error.Code)
	}
	if env.ID == nil || env.Result == nil {
		return Ack{}, fmt.Errorf("parse ack: missing id or result")
	}

	var sub uint64
	if err := json.Unmarshal(*env.Result, &sub); err != nil {
		return Ack{}, fmt.Errorf("parse ack result: %w", err)
	}

	return Ack{RequestID: *env.ID, Subscription: sub}, nil
}

// Parse parses one steady-state frame into a Notification. Frames carrying
// another method or a request reply yield ErrNotNotification; structurally
// broken frames yield a parse error. Neither is fatal to the stream.
func Parse(raw []byte) (*Notification, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parse frame: %w", err)
	}
	if env.Method != "logsNotification" {
		return nil, ErrNotNotification
	}
	if env.Params == nil {
		return nil, fmt.Errorf("notification missing params")
	}

	var params notificationParams
	if err := json.Unmarshal(*env.Params, &params); err != nil {
		return nil, fmt.Errorf("parse notification params: %w", err)
	}
	if params.Result.Value.Signature == "" {
		return nil, fmt.Errorf("notification missing signature")
	}

	return &Notification{
		Subscription: params.Subscription,
		Slot:         params.Result.Context.Slot,
		Signature:    params.Result.Value.Signature,
		Logs:         params.Result.Value.Logs,
	}, nil
}
