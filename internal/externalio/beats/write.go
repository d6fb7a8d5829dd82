package beats

import (
	"context"
	"ipfee/internal/global"
	"ipfee/pkg/protocol"
)

// Writes received event and associated metadata to configured beats server
func (mod *OutModule) Write(ctx context.Context, rec protocol.Received) (eventsSent int, err error) {
	if mod == nil {
		return
	}

	fields, err := eventFields(rec)
	if err != nil {
		return
	}
	events := []interface{}{fields}

	eventsSent, err = mod.sink.Send(events)
	if err != nil {
		return
	}
	return
}

// Builds the beats document for one event
func eventFields(rec protocol.Received) (fields map[string]interface{}, err error) {
	jEvent, err := protocol.ToJSON(rec.Event)
	if err != nil {
		return
	}

	txn := map[string]interface{}{
		"signature": jEvent.Signature,
	}
	switch rec.Event.(type) {
	case protocol.UserTx:
		txn["source_ip"] = jEvent.IP
	case protocol.Fee:
		txn["cu_limit"] = jEvent.CULimit
		txn["cu_used"] = jEvent.CUUsed
		txn["fee"] = jEvent.Fee
	}

	fields = map[string]interface{}{
		// Minimum required fields
		"@timestamp": rec.Received,
		"message":    protocol.Format(rec.Event),

		"event": map[string]interface{}{
			"kind":   "event",
			"action": jEvent.Type,
		},
		"source": map[string]interface{}{
			"address": rec.Remote,
		},
		"agent": map[string]interface{}{
			// Meta fields identifying the collecting daemon itself
			"program": global.ProgBaseName,
			"version": global.ProgVersion,
			"type":    "ipfee",
			"pid":     global.PID,
		},
		"transaction": txn,
	}
	return
}
