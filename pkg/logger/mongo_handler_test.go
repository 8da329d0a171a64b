package logger

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type recordingInserter struct {
	mu   sync.Mutex
	docs []LogDocument
}

func (r *recordingInserter) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range docs {
		r.docs = append(r.docs, d.(LogDocument))
	}
	return &mongo.InsertManyResult{}, nil
}

func TestMongoHandlerLiftsIndexedKeys(t *testing.T) {
	col := &recordingInserter{}
	h := &MongoHandler{sink: newMongoSink(col, time.Hour)}

	log := slog.New(h).With("request_id", "req-1").WithGroup("checkout")
	log.Info("order placed", "order_id", uint(42), "total", int64(2600))
	h.Close()
	h.Close()

	if len(col.docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(col.docs))
	}
	doc := col.docs[0]
	if doc.RequestID != "req-1" || doc.OrderID != uint64(42) {
		t.Errorf("indexed keys not lifted: %+v", doc)
	}
	if doc.Attrs["checkout.total"] != int64(2600) {
		t.Errorf("grouped attr missing: %+v", doc.Attrs)
	}
	if doc.Msg != "order placed" || doc.Level != "INFO" {
		t.Errorf("unexpected doc: %+v", doc)
	}
}

func TestMongoSinkCountsDrops(t *testing.T) {
	s := &mongoSink{queue: make(chan LogDocument, 1)}
	s.enqueue(LogDocument{})
	s.enqueue(LogDocument{})

	h := &MongoHandler{sink: s}
	if h.Dropped() != 1 {
		t.Errorf("expected 1 dropped record, got %d", h.Dropped())
	}
}

func TestShutdownFlushesActiveSink(t *testing.T) {
	col := &recordingInserter{}
	activeMongo = &MongoHandler{sink: newMongoSink(col, time.Hour)}
	t.Cleanup(func() { activeMongo = nil })

	slog.New(activeMongo).Warn("cart: cross-session delete refused", "item_id", 7)
	Shutdown()

	if len(col.docs) != 1 || col.docs[0].Level != "WARN" {
		t.Fatalf("expected the buffered record to be flushed, got %+v", col.docs)
	}
}
