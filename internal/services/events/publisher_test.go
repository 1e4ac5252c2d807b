package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestPublishIsNoopWithoutRedis(t *testing.T) {
	p := NewPublisher(nil)
	if err := p.Publish(context.Background(), TableBills, ActionInsert, 7); err != nil {
		t.Errorf("Publish without redis: %v", err)
	}

	var nilPublisher *Publisher
	if err := nilPublisher.Publish(context.Background(), TableBills, ActionInsert, 7); err != nil {
		t.Errorf("Publish on nil publisher: %v", err)
	}
}

func TestChangeEventWireFormat(t *testing.T) {
	event := ChangeEvent{
		Table:     TablePayments,
		Action:    ActionInsert,
		RecordID:  42,
		Timestamp: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["table"] != "payments" || decoded["action"] != "insert" {
		t.Errorf("unexpected envelope: %s", data)
	}
	if decoded["record_id"] != float64(42) {
		t.Errorf("record_id = %v, want 42", decoded["record_id"])
	}
}
