// Command mirror pushes the address extract into a Meilisearch index so the
// dataset can be explored interactively (typo-tolerant ad-hoc queries) outside
// the service's deterministic ranking.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"

	"github.com/geocode-service/app/models"
	"github.com/geocode-service/internal/dataset"
	"github.com/geocode-service/internal/textnorm"
)

const batchSize = 1000

// addressDoc flat Meilisearch document derived from one AddressRecord.
type addressDoc struct {
	ID          int64   `json:"id"`
	Locality    string  `json:"locality"`
	Street      string  `json:"street"`
	HouseNumber string  `json:"house_number"`
	FullAddress string  `json:"full_address"`
	FoldedText  string  `json:"folded_text"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

func main() {
	extractPath := flag.String("extract", "./data/addresses.ndjson", "path to the NDJSON address extract")
	meiliURL := flag.String("meili-url", "http://localhost:7700", "Meilisearch URL")
	meiliKey := flag.String("meili-key", "", "Meilisearch API key")
	indexName := flag.String("index", "addresses", "target index name")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal("cannot initialize logger:", err)
	}
	defer logger.Sync()

	records, err := dataset.LoadNDJSON(*extractPath, logger)
	if err != nil {
		logger.Fatal("cannot load extract", zap.Error(err))
	}

	client := meilisearch.New(*meiliURL, meilisearch.WithAPIKey(*meiliKey))
	health, err := client.Health()
	if err != nil {
		logger.Fatal("cannot reach meilisearch", zap.Error(err))
	}
	logger.Info("meilisearch reachable", zap.String("status", health.Status))

	index := client.Index(*indexName)
	settings := &meilisearch.Settings{
		SearchableAttributes: []string{"full_address", "folded_text", "street", "locality"},
		FilterableAttributes: []string{"locality", "street"},
		SortableAttributes:   []string{"id"},
	}
	task, err := index.UpdateSettings(settings)
	if err != nil {
		logger.Fatal("cannot update index settings", zap.Error(err))
	}
	waitForTask(client, task.TaskUID, logger)

	var (
		batch []addressDoc
		total int
	)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		docs := make([]interface{}, len(batch))
		for i, d := range batch {
			docs[i] = d
		}
		if _, err := index.AddDocuments(docs, "id"); err != nil {
			logger.Error("batch insert failed", zap.Error(err))
		} else {
			total += len(batch)
			logger.Info("batch mirrored", zap.Int("total", total))
		}
		batch = batch[:0]
	}

	for _, rec := range records {
		batch = append(batch, toDoc(rec))
		if len(batch) >= batchSize {
			flush()
		}
	}
	flush()

	fmt.Printf("mirrored %d records into index %q\n", total, *indexName)
}

func toDoc(rec models.AddressRecord) addressDoc {
	full := rec.FullAddress()
	return addressDoc{
		ID:          rec.ID,
		Locality:    rec.Locality,
		Street:      rec.Street,
		HouseNumber: rec.HouseNumber,
		FullAddress: full,
		FoldedText:  textnorm.Fold(full),
		Lat:         rec.Lat,
		Lon:         rec.Lon,
	}
}

func waitForTask(client meilisearch.ServiceManager, taskUID int64, logger *zap.Logger) {
	for {
		info, err := client.GetTask(taskUID)
		if err != nil {
			logger.Fatal("cannot check task status", zap.Error(err))
		}
		switch info.Status {
		case "succeeded":
			return
		case "failed":
			logger.Fatal("meilisearch task failed", zap.Any("error", info.Error))
		}
		time.Sleep(time.Second)
	}
}
