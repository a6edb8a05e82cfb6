package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/geocode-service/app/models"
)

// LoadNDJSON reads one AddressRecord per line from a prepared extract file.
// The ingestion job produces the file; malformed lines are skipped with a
// warning instead of failing the whole startup.
func LoadNDJSON(path string, logger *zap.Logger) ([]models.AddressRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset extract: %w", err)
	}
	defer f.Close()

	var records []models.AddressRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec models.AddressRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Warn("skipping malformed dataset line", zap.Int("line", line), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset extract: %w", err)
	}

	logger.Info("dataset extract loaded", zap.String("path", path), zap.Int("records", len(records)))
	return records, nil
}

// LoadMongo reads the whole address collection written by the ingestion job.
// Sorted by _id so record IDs are stable across restarts.
func LoadMongo(ctx context.Context, db *mongo.Database, collection string, logger *zap.Logger) ([]models.AddressRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	cur, err := db.Collection(collection).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("query address collection: %w", err)
	}
	defer cur.Close(ctx)

	var records []models.AddressRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode address collection: %w", err)
	}

	logger.Info("dataset loaded from mongo", zap.String("collection", collection), zap.Int("records", len(records)))
	return records, nil
}
