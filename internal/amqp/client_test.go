package amqp

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestRecordEventMessageJSON(t *testing.T) {
	msg := NewRecordEventMessage(RecordUpdated, "abc", "2024-03-05", "2024-03")
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := RecordEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if got.Type != RecordUpdated || got.RecordID != "abc" || got.Month != "2024-03" {
		t.Fatalf("decoded = %+v", got)
	}
	if !got.Timestamp.Equal(msg.Timestamp) {
		t.Fatalf("timestamp = %v, want %v", got.Timestamp, msg.Timestamp)
	}

	if _, err := RecordEventMessageFromJSON([]byte("{")); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestRecordEventMessagePreviousMonth(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		wantPrev string
		want     []string
	}{
		{"moved", "2024-02", "2024-02", []string{"2024-03", "2024-02"}},
		{"same month", "2024-03", "", []string{"2024-03"}},
		{"unknown", "", "", []string{"2024-03"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewRecordEventMessage(RecordUpdated, "abc", "2024-03-05", "2024-03").WithPreviousMonth(tt.previous)
			if msg.PreviousMonth != tt.wantPrev {
				t.Errorf("PreviousMonth = %q, want %q", msg.PreviousMonth, tt.wantPrev)
			}
			if got := msg.AffectedMonths(); !slices.Equal(got, tt.want) {
				t.Errorf("AffectedMonths() = %v, want %v", got, tt.want)
			}

			data, err := msg.ToJSON()
			if err != nil {
				t.Fatalf("ToJSON: %v", err)
			}
			decoded, err := RecordEventMessageFromJSON(data)
			if err != nil {
				t.Fatalf("FromJSON: %v", err)
			}
			if decoded.PreviousMonth != tt.wantPrev {
				t.Errorf("decoded PreviousMonth = %q", decoded.PreviousMonth)
			}
		})
	}
}

func TestPublishOnClosedClient(t *testing.T) {
	c := &Client{exchangeName: "ex", queueName: "q"}
	err := c.PublishRecordEvent(context.Background(), NewRecordEventMessage(RecordCreated, "1", "", ""))
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestPublishRespectsCancelledContext(t *testing.T) {
	c := &Client{exchangeName: "ex", queueName: "q"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.PublishRecordEvent(ctx, NewRecordEventMessage(RecordDeleted, "1", "", "")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
