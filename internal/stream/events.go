package stream

import (
	"regexp"
	"strings"
)

// DataEvent is one "Program data:" payload attributed to the program that
// was executing when the line was emitted.
type DataEvent struct {
	Txid      string
	ProgramID string
	Base64    string
}

const dataPrefix = "Program data:"

// invokePattern matches "Program <id> invoke [depth]" lines. Program ids
// are base58 strings of at least 32 characters.
var invokePattern = regexp.MustCompile(`^Program (\w{32,}) invoke`)

var exitPattern = regexp.MustCompile(`^Program (\w{32,}) (?:success|failed)`)

// DataEvents walks the ordered log lines and extracts one event per data
// line. Invoke lines push the named program onto the active-context stack,
// success/failed lines pop it, and each data line is attributed to the
// innermost active program. Data lines seen with no active program are
// skipped. A notification with no data lines yields an empty slice.
func (n *Notification) DataEvents() []DataEvent {
	var events []DataEvent
	var active []string

	for _, line := range n.Logs {
		if m := invokePattern.FindStringSubmatch(line); m != nil {
			active = append(active, m[1])
			continue
		}
		if m := exitPattern.FindStringSubmatch(line); m != nil {
			if len(active) > 0 && active[len(active)-1] == m[1] {
				active = active[:len(active)-1]
			}
			continue
		}
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		if len(active) == 0 {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
		events = append(events, DataEvent{
			Txid:      n.Signature,
			ProgramID: active[len(active)-1],
			Base64:    payload,
		})
	}

	return events
}
