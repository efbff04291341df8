package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/spec-kit/character-gallery/internal/config"
)

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestPublishKeysByRecipient(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(fw, nil)
	intent := Intent{
		ID:          "n-1",
		Kind:        "CHARACTER_APPROVED",
		RecipientID: "user-1",
		Data:        map[string]string{"character_name": "Thorin"},
		CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := p.Publish(context.Background(), intent); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(fw.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fw.msgs))
	}
	if string(fw.msgs[0].Key) != "user-1" {
		t.Fatalf("key = %s, want user-1", fw.msgs[0].Key)
	}
	var decoded Intent
	if err := json.Unmarshal(fw.msgs[0].Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Kind != intent.Kind || decoded.Data["character_name"] != "Thorin" {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestPublishWithoutBrokersIsNoop(t *testing.T) {
	p := NewKafkaPublisher(config.KafkaConfig{}, zap.NewNop())
	if err := p.Publish(context.Background(), Intent{Kind: "X"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
