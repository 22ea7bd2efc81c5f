// Package simlink is the websocket link to the driving platform. The
// platform speaks a socket.io-style text framing: event frames start
// with "42" followed by a JSON array of [event, payload]. Telemetry
// arrives as 42["telemetry",{...}]; the controller answers with
// 42["steer",{...}] or, when there is nothing usable to act on,
// 42["manual",{}].
package simlink

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/banshee-data/pathtrack/internal/control"
)

const (
	framePrefix    = "42"
	eventTelemetry = "telemetry"
	eventSteer     = "steer"
	eventManual    = "manual"
)

// decodeFrame splits an event frame into its event name and raw
// payload. ok is false for frames that are not events (pings,
// handshakes) and should be ignored outright.
func decodeFrame(data []byte) (event string, payload []byte, ok bool) {
	if !bytes.HasPrefix(data, []byte(framePrefix)) {
		return "", nil, false
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(data[len(framePrefix):], &parts); err != nil || len(parts) == 0 {
		return "", nil, false
	}
	if err := json.Unmarshal(parts[0], &event); err != nil {
		return "", nil, false
	}
	if len(parts) > 1 {
		payload = parts[1]
	}
	return event, payload, true
}

// decodeTelemetry parses a telemetry payload. A payload that is absent,
// null, or not a telemetry object yields ok=false; the caller answers
// with a manual frame so the platform keeps driving itself.
func decodeTelemetry(payload []byte) (control.Telemetry, bool) {
	var t control.Telemetry
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return t, false
	}
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, false
	}
	return t, true
}

// encodeSteer frames a command for transmission.
func encodeSteer(cmd control.Command) ([]byte, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("simlink: failed to encode command: %w", err)
	}
	return []byte(framePrefix + `["` + eventSteer + `",` + string(body) + `]`), nil
}

// encodeManual frames the no-op reply.
func encodeManual() []byte {
	return []byte(framePrefix + `["` + eventManual + `",{}]`)
}
