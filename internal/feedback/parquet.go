package feedback

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/plateful/platesearch/internal/cloudwriter"
	"github.com/plateful/platesearch/internal/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/schema"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// ImpressionRecord is the flat parquet layout of an impression.
type ImpressionRecord struct {
	ID          string  `json:"id" parquet:"name=id,type=BYTE_ARRAY,convertedtype=UTF8"`
	SessionID   string  `json:"session_id" parquet:"name=sessionId,type=BYTE_ARRAY,convertedtype=UTF8"`
	ItemID      string  `json:"item_id" parquet:"name=itemId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Position    int32   `json:"position" parquet:"name=position,type=INT32"`
	Score       float64 `json:"score" parquet:"name=score,type=DOUBLE"`
	Similarity  float64 `json:"similarity" parquet:"name=similarity,type=DOUBLE"`
	TagMatch    float64 `json:"tag_match" parquet:"name=tagMatch,type=DOUBLE"`
	RatingFit   float64 `json:"rating_fit" parquet:"name=ratingFit,type=DOUBLE"`
	PriceFit    float64 `json:"price_fit" parquet:"name=priceFit,type=DOUBLE"`
	DistanceFit float64 `json:"distance_fit" parquet:"name=distanceFit,type=DOUBLE"`
	LikesBoost  float64 `json:"likes_boost" parquet:"name=likesBoost,type=DOUBLE"`
	Timestamp   int64   `json:"timestamp" parquet:"name=timestamp,type=INT64"`
}

// FeedbackRecord is the flat parquet layout of a feedback event.
type FeedbackRecord struct {
	ClientEventID string `json:"client_event_id" parquet:"name=clientEventId,type=BYTE_ARRAY,convertedtype=UTF8"`
	SessionID     string `json:"session_id" parquet:"name=sessionId,type=BYTE_ARRAY,convertedtype=UTF8"`
	UserID        string `json:"user_id" parquet:"name=userId,type=BYTE_ARRAY,convertedtype=UTF8"`
	ItemID        string `json:"item_id" parquet:"name=itemId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Action        string `json:"action" parquet:"name=action,type=BYTE_ARRAY,convertedtype=UTF8"`
	Position      int32  `json:"position" parquet:"name=position,type=INT32"`
	DwellTimeMs   int64  `json:"dwell_time" parquet:"name=dwellTimeMs,type=INT64"`
	Timestamp     int64  `json:"timestamp" parquet:"name=timestamp,type=INT64"`
}

func parquetSchemaFor(topic string) (*schema.SchemaHandler, error) {
	switch topic {
	case TopicImpressions:
		return schema.NewSchemaHandlerFromStruct(new(ImpressionRecord))
	case TopicFeedback:
		return schema.NewSchemaHandlerFromStruct(new(FeedbackRecord))
	default:
		return nil, fmt.Errorf("unknown event topic: %s", topic)
	}
}

// ParquetSink writes events as partitioned parquet files, locally or via
// a cloud writer factory when a cloud destination is configured.
type ParquetSink struct {
	basePath           string
	folder             string
	mu                 sync.Mutex
	writers            map[string]*writer.ParquetWriter
	files              map[string]source.ParquetFile
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
}

func NewParquetSink(cfg *models.Config) (*ParquetSink, error) {
	p := &ParquetSink{
		basePath: cfg.OutputPath,
		folder:   cfg.OutputFolder,
		writers:  make(map[string]*writer.ParquetWriter),
		files:    make(map[string]source.ParquetFile),
	}

	if cfg.OutputDestination != "" && cfg.OutputDestination != "local" {
		switch cfg.CloudStorage.Provider {
		case "s3":
			factory, err := cloudwriter.NewS3WriterFactory(cfg.CloudStorage.Region)
			if err != nil {
				return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
			}
			p.cloudWriterFactory = factory
			p.cloudBucketName = cfg.CloudStorage.BucketName
		default:
			return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.CloudStorage.Provider)
		}
	}

	return p, nil
}

func (p *ParquetSink) WriteMessage(topic string, msg []byte) error {
	record, err := decodeRecord(topic, msg)
	if err != nil {
		return err
	}

	partitionPath := partitionFor(time.Now().UTC())
	fullPath := filepath.Join(p.basePath, p.folder, topic, partitionPath)
	writerKey := fmt.Sprintf("%s_%s", topic, partitionPath)

	p.mu.Lock()
	defer p.mu.Unlock()

	pw, ok := p.writers[writerKey]
	if !ok {
		pw, err = p.newWriter(writerKey, fullPath, topic)
		if err != nil {
			return fmt.Errorf("failed to create parquet writer: %w", err)
		}
	}

	if err := pw.Write(record); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

func decodeRecord(topic string, msg []byte) (interface{}, error) {
	switch topic {
	case TopicImpressions:
		var impression models.Impression
		if err := json.Unmarshal(msg, &impression); err != nil {
			return nil, err
		}
		return ImpressionRecord{
			ID:          impression.ID,
			SessionID:   impression.SessionID,
			ItemID:      impression.ItemID,
			Position:    int32(impression.Position),
			Score:       impression.Score,
			Similarity:  impression.Features.Similarity,
			TagMatch:    impression.Features.TagMatch,
			RatingFit:   impression.Features.RatingFit,
			PriceFit:    impression.Features.PriceFit,
			DistanceFit: impression.Features.DistanceFit,
			LikesBoost:  impression.Features.LikesBoost,
			Timestamp:   impression.CreatedAt.Unix(),
		}, nil
	case TopicFeedback:
		var event models.FeedbackEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			return nil, err
		}
		return FeedbackRecord{
			ClientEventID: event.ClientEventID,
			SessionID:     event.SessionID,
			UserID:        event.UserID,
			ItemID:        event.ItemID,
			Action:        event.Action,
			Position:      int32(event.Position),
			DwellTimeMs:   event.DwellTimeMs,
			Timestamp:     event.CreatedAt.Unix(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown event topic: %s", topic)
	}
}

func (p *ParquetSink) newWriter(writerKey, fullPath, topic string) (*writer.ParquetWriter, error) {
	var fw source.ParquetFile
	var err error
	if p.cloudWriterFactory != nil {
		objectPath := filepath.Join(fullPath, "data.parquet")
		cloudWriter, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = cloudwriter.NewParquetFile(cloudWriter)
	} else {
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return nil, err
		}
		fw, err = local.NewLocalFileWriter(filepath.Join(fullPath, "data.parquet"))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	sc, err := parquetSchemaFor(topic)
	if err != nil {
		return nil, err
	}

	pw, err := writer.NewParquetWriter(fw, nil, 4)
	if err != nil {
		return nil, err
	}
	pw.SchemaHandler = sc

	p.writers[writerKey] = pw
	p.files[writerKey] = fw
	return pw, nil
}

func (p *ParquetSink) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for key, pw := range p.writers {
		if err := pw.WriteStop(); err != nil {
			lastErr = err
			log.Printf("error closing parquet writer for %s: %v", key, err)
		}
		if f, ok := p.files[key]; ok {
			if err := f.Close(); err != nil {
				lastErr = err
				log.Printf("error closing parquet file for %s: %v", key, err)
			}
		}
	}
	return lastErr
}
