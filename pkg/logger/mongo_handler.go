package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoDrainTick = 2 * time.Second
)

// LogDocument is one stored log line. request_id and order_id are top-level
// so the collection can be searched by either.
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	OrderID   any       `bson:"order_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// inserter is the part of *mongo.Collection the sink writes through.
type inserter interface {
	InsertMany(ctx context.Context, docs []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// mongoSink owns the buffer and the writer goroutine. Every handler derived
// through WithAttrs or WithGroup shares one sink.
type mongoSink struct {
	col     inserter
	queue   chan LogDocument
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	dropped atomic.Int64
	tick    time.Duration

	disconnect func(context.Context) error
}

func newMongoSink(col inserter, tick time.Duration) *mongoSink {
	s := &mongoSink{
		col:     col,
		queue:   make(chan LogDocument, mongoQueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		tick:    tick,
	}
	go s.run()
	return s
}

func (s *mongoSink) enqueue(doc LogDocument) {
	select {
	case s.queue <- doc:
	default:
		s.dropped.Add(1)
	}
}

func (s *mongoSink) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = s.col.InsertMany(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case doc := <-s.queue:
			batch = append(batch, doc)
			if len(batch) >= mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for len(s.queue) > 0 {
				batch = append(batch, <-s.queue)
				if len(batch) >= mongoBatchSize {
					flush()
				}
			}
			flush()
			return
		}
	}
}

func (s *mongoSink) close() {
	s.once.Do(func() {
		close(s.done)
		<-s.stopped
		if s.disconnect != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.disconnect(ctx)
		}
	})
}

// MongoHandler is a slog.Handler that ships records to a MongoDB collection
// in batches. Records arriving while the buffer is full are dropped and
// counted rather than blocking the caller.
type MongoHandler struct {
	sink   *mongoSink
	attrs  []slog.Attr
	groups []string
}

// NewMongoHandler connects to uri and writes into db.collection. Close must
// be called to flush what is still buffered.
func NewMongoHandler(uri, db, collection string) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("mongo_handler: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo_handler: ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: -1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})

	sink := newMongoSink(col, mongoDrainTick)
	sink.disconnect = client.Disconnect
	return &MongoHandler{sink: sink}, nil
}

func (h *MongoHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	doc := LogDocument{Time: r.Time, Level: r.Level.String(), Msg: r.Message, Attrs: bson.M{}}

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	for _, a := range h.attrs {
		doc.add(prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		doc.add(prefix, a)
		return true
	})

	h.sink.enqueue(doc)
	return nil
}

func (d *LogDocument) add(prefix string, a slog.Attr) {
	switch a.Key {
	case "request_id":
		d.RequestID = a.Value.String()
	case "order_id":
		d.OrderID = a.Value.Any()
	default:
		d.Attrs[prefix+a.Key] = a.Value.Any()
	}
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &c
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.groups = append(append([]string(nil), h.groups...), name)
	return &c
}

// Dropped is the number of records lost to a full buffer.
func (h *MongoHandler) Dropped() int64 { return h.sink.dropped.Load() }

// Close flushes buffered records and disconnects. Safe to call twice.
func (h *MongoHandler) Close() { h.sink.close() }

// MultiHandler sends each record to every wrapped handler that accepts its
// level.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(hs ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: hs}
}

func (m *MultiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *MultiHandler) each(fn func(slog.Handler) slog.Handler) *MultiHandler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = fn(h)
	}
	return &MultiHandler{handlers: hs}
}
