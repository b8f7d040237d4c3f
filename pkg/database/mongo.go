package database

import (
	"context"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnState tracks the document-store link: {connected, connecting}. It
// starts at {false,false}, moves to {false,true} while a handshake is in
// flight, to {true,false} on success and back to {false,false} on failure.
// Every storage operation consults it before choosing between the primary
// store and the fallback path.
type ConnState struct {
	mu         sync.Mutex
	connected  bool
	connecting bool
}

// BeginConnect claims the right to run a handshake. It returns false when the
// link is already up or another caller is mid-handshake, so at most one
// connection attempt ever runs at a time.
func (s *ConnState) BeginConnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected || s.connecting {
		return false
	}
	s.connecting = true
	return true
}

func (s *ConnState) Succeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	s.connecting = false
}

func (s *ConnState) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	s.connecting = false
}

func (s *ConnState) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Snapshot returns both flags atomically.
func (s *ConnState) Snapshot() (connected, connecting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected, s.connecting
}

type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// MongoGateway owns the lazily-established Mongo connection and its state
// flags. The collection handle becomes available only after the handshake and
// index creation both succeed, so unique-insert-dependent operations never see
// a half-initialized link.
type MongoGateway struct {
	cfg   MongoConfig
	state ConnState

	mu     sync.Mutex
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoGateway(cfg MongoConfig) *MongoGateway {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	return &MongoGateway{cfg: cfg}
}

// Connect runs one guarded connection attempt and reports whether the link is
// usable afterwards. Concurrent callers that lose the BeginConnect race do not
// wait for the handshake; they see the current state and fall through to the
// fallback path.
func (g *MongoGateway) Connect(ctx context.Context) bool {
	if !g.state.BeginConnect() {
		return g.state.Connected()
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(g.cfg.URI))
	if err != nil {
		log.Printf("mongo connect failed: %v", err)
		g.state.Fail()
		return false
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Printf("mongo ping failed: %v", err)
		_ = client.Disconnect(context.Background())
		g.state.Fail()
		return false
	}

	coll := client.Database(g.cfg.Database).Collection(g.cfg.Collection)

	// Indexes must exist before the link is marked usable: reads sort on
	// timestamp and inserts rely on id uniqueness.
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		log.Printf("mongo index creation failed: %v", err)
		_ = client.Disconnect(context.Background())
		g.state.Fail()
		return false
	}

	g.mu.Lock()
	g.client = client
	g.coll = coll
	g.mu.Unlock()

	g.state.Succeed()
	log.Printf("connected to mongodb (%s/%s)", g.cfg.Database, g.cfg.Collection)
	return true
}

// EnsureConnected retries Connect up to attempts times with a delay between
// tries. Used on the write path, where a short wait for a cold store is worth
// it before falling back.
func (g *MongoGateway) EnsureConnected(ctx context.Context, attempts int, delay time.Duration) bool {
	for i := 0; i < attempts; i++ {
		if g.Connect(ctx) {
			return true
		}
		if i < attempts-1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return false
			}
		}
	}
	return g.state.Connected()
}

func (g *MongoGateway) Connected() bool {
	return g.state.Connected()
}

// Snapshot returns both connection-state flags atomically.
func (g *MongoGateway) Snapshot() (connected, connecting bool) {
	return g.state.Snapshot()
}

func (g *MongoGateway) State() *ConnState {
	return &g.state
}

// Collection returns the responses collection, or nil while disconnected.
func (g *MongoGateway) Collection() *mongo.Collection {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.state.Connected() {
		return nil
	}
	return g.coll
}

// Close tears the link down and resets the state flags.
func (g *MongoGateway) Close(ctx context.Context) error {
	g.mu.Lock()
	client := g.client
	g.client = nil
	g.coll = nil
	g.mu.Unlock()

	g.state.Fail()
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
