package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"stratego_oracle/internal/domain/analysis"
)

const analysesCollection = "analyses"

type MongoAnalysisStorage struct {
	mongo *mongo.Database
	log   *zap.SugaredLogger
}

func NewMongoAnalysisStorage(db *mongo.Database, log *zap.SugaredLogger) *MongoAnalysisStorage {
	return &MongoAnalysisStorage{mongo: db, log: log}
}

func (m *MongoAnalysisStorage) SaveAnalysis(ctx context.Context, record analysis.Record) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := m.mongo.Collection(analysesCollection).InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	m.log.Debugf("analysis %s stored for game %s", record.ID, record.GameID)
	return nil
}

func (m *MongoAnalysisStorage) ListAnalyses(ctx context.Context, gameID string) ([]analysis.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"game_id": gameID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := m.mongo.Collection(analysesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find analyses: %w", err)
	}
	defer cursor.Close(ctx)

	result := make([]analysis.Record, 0)
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode analyses: %w", err)
	}
	return result, nil
}

// MemoryAnalysisStorage keeps the archive in process when mongo is not configured.
type MemoryAnalysisStorage struct {
	mu      sync.RWMutex
	records map[string][]analysis.Record
}

func NewMemoryAnalysisStorage() *MemoryAnalysisStorage {
	return &MemoryAnalysisStorage{records: make(map[string][]analysis.Record)}
}

func (m *MemoryAnalysisStorage) SaveAnalysis(_ context.Context, record analysis.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.GameID] = append(m.records[record.GameID], record)
	return nil
}

func (m *MemoryAnalysisStorage) ListAnalyses(_ context.Context, gameID string) ([]analysis.Record, error) {
	m.mu.RLock()
	stored := m.records[gameID]
	result := make([]analysis.Record, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		result = append(result, stored[i])
	}
	m.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
