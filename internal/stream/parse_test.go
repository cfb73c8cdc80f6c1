package stream

import (
	"errors"
	"reflect"
	"testing"
)

const sampleNotification = `{
	"jsonrpc": "2.0",
	"method": "logsNotification",
	"params": {
		"result": {
			"context": {"slot": 348905196},
			"value": {
				"signature": "289vySW4kdGCpdgcQ57nXVip2dPJiiPxu2hEWmzKrur4",
				"err": null,
				"logs": [
					"Program pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA invoke [1]",
					"Program log: Instruction: Swap",
					"Program data: AAEC",
					"Program pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA success"
				]
			}
		},
		"subscription": 164324
	}
}`

func TestParseAck(t *testing.T) {
	ack, err := ParseAck([]byte(`{"jsonrpc":"2.0","result":164324,"id":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ack.RequestID != 1 || ack.Subscription != 164324 {
		t.Fatalf("ack mismatch: %+v", ack)
	}
}

func TestParseAckError(t *testing.T) {
	raw := `{"jsonrpc":"2.0","error":{"code":-32602,"message":"Invalid params"},"id":1}`
	if _, err := ParseAck([]byte(raw)); err == nil {
		t.Fatalf("expected error for rejected subscribe")
	}
}

func TestParseAckMalformed(t *testing.T) {
	for _, raw := range []string{`{`, `{"jsonrpc":"2.0"}`, `{"id":1,"result":"abc"}`} {
		if _, err := ParseAck([]byte(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseNotification(t *testing.T) {
	n, err := Parse([]byte(sampleNotification))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Signature != "289vySW4kdGCpdgcQ57nXVip2dPJiiPxu2hEWmzKrur4" {
		t.Fatalf("signature mismatch: %q", n.Signature)
	}
	if n.Slot != 348905196 || n.Subscription != 164324 {
		t.Fatalf("context mismatch: %+v", n)
	}
	if len(n.Logs) != 4 {
		t.Fatalf("expected 4 log lines, got %d", len(n.Logs))
	}
}

func TestParseNotNotification(t *testing.T) {
	_, err := Parse([]byte(`{"jsonrpc":"2.0","result":164324,"id":1}`))
	if !errors.Is(err, ErrNotNotification) {
		t.Fatalf("expected ErrNotNotification, got %v", err)
	}

	_, err = Parse([]byte(`{"jsonrpc":"2.0","method":"slotNotification","params":{}}`))
	if !errors.Is(err, ErrNotNotification) {
		t.Fatalf("expected ErrNotNotification, got %v", err)
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []string{
		`not json`,
		`{"jsonrpc":"2.0","method":"logsNotification"}`,
		`{"jsonrpc":"2.0","method":"logsNotification","params":{"result":{"value":{"logs":[]}}}}`,
	}
	for _, raw := range cases {
		_, err := Parse([]byte(raw))
		if err == nil {
			t.Fatalf("expected error for %q", raw)
		}
		if errors.Is(err, ErrNotNotification) {
			t.Fatalf("expected structural error for %q, got ErrNotNotification", raw)
		}
	}
}

func TestDataEvents(t *testing.T) {
	n, err := Parse([]byte(sampleNotification))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []DataEvent{{
		Txid:      "289vySW4kdGCpdgcQ57nXVip2dPJiiPxu2hEWmzKrur4",
		ProgramID: "pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA",
		Base64:    "AAEC",
	}}
	if got := n.DataEvents(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events mismatch: %+v != %+v", got, want)
	}
}

func TestDataEventsNestedInvoke(t *testing.T) {
	n := &Notification{
		Signature: "tx1",
		Logs: []string{
			"Program 675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8 invoke [1]",
			"Program LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo invoke [2]",
			"Program data: AQID",
			"Program LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo success",
			"Program data: BAUG",
			"Program 675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8 success",
		},
	}

	want := []DataEvent{
		{Txid: "tx1", ProgramID: "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo", Base64: "AQID"},
		{Txid: "tx1", ProgramID: "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8", Base64: "BAUG"},
	}
	if got := n.DataEvents(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events mismatch: %+v != %+v", got, want)
	}
}

func TestDataEventsNoDataLines(t *testing.T) {
	n := &Notification{
		Signature: "tx2",
		Logs: []string{
			"Program 6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P invoke [1]",
			"Program log: Instruction: Create",
			"Program 6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P success",
		},
	}
	if got := n.DataEvents(); len(got) != 0 {
		t.Fatalf("expected no events, got %+v", got)
	}
}

func TestDataEventsOrphanDataLine(t *testing.T) {
	n := &Notification{
		Signature: "tx3",
		Logs:      []string{"Program data: AAEC"},
	}
	if got := n.DataEvents(); len(got) != 0 {
		t.Fatalf("expected no events for data line without context, got %+v", got)
	}
}
