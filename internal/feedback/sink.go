package feedback

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/plateful/platesearch/internal/models"
)

// Event topics mirrored to the configured sink.
const (
	TopicImpressions = "impression_events"
	TopicFeedback    = "feedback_events"
)

// EventSink receives serialized impression/feedback events for archival
// or streaming. Sinks are best effort; the engine never fails a search on
// a sink error.
type EventSink interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

func writeSinkMessage(sink EventSink, topic string, payload interface{}) error {
	switch v := payload.(type) {
	case []models.Impression:
		for _, impression := range v {
			msg, err := json.Marshal(impression)
			if err != nil {
				return err
			}
			if err := sink.WriteMessage(topic, msg); err != nil {
				return err
			}
		}
		return nil
	default:
		msg, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		return sink.WriteMessage(topic, msg)
	}
}

// JSONSink appends events as newline-delimited JSON under
// basePath/folder/topic/year=/month=/day=/hour= partitions.
type JSONSink struct {
	basePath string
	folder   string
	files    map[string]*os.File
}

func NewJSONSink(basePath, folder string) *JSONSink {
	return &JSONSink{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONSink) WriteMessage(topic string, msg []byte) error {
	partitionPath := partitionFor(time.Now().UTC())
	fullPath := filepath.Join(j.basePath, j.folder, topic, partitionPath)

	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return err
	}

	fileKey := fmt.Sprintf("%s_%s", topic, partitionPath)
	file, ok := j.files[fileKey]
	if !ok {
		var err error
		file, err = os.OpenFile(filepath.Join(fullPath, "data.json"),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err := file.WriteString("\n")
	return err
}

func (j *JSONSink) Close() error {
	for _, file := range j.files {
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

// ConsoleSink prints events to stdout; the default when nothing is
// configured.
type ConsoleSink struct{}

func (c *ConsoleSink) WriteMessage(topic string, msg []byte) error {
	_, err := fmt.Fprintf(os.Stdout, "[%s] %s\n", topic, string(msg))
	return err
}

func (c *ConsoleSink) Close() error { return nil }

func partitionFor(t time.Time) string {
	year, month, day := t.Date()
	return fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, month, day, t.Hour())
}

// NewSinkFromConfig picks the sink the config asks for: Kafka when
// enabled, otherwise a file sink under output_path, otherwise stdout.
func NewSinkFromConfig(cfg *models.Config) (EventSink, error) {
	if cfg.Kafka.Enabled {
		return NewKafkaSink(cfg.Kafka)
	}
	if cfg.OutputPath != "" {
		switch cfg.OutputFormat {
		case "parquet", "":
			return NewParquetSink(cfg)
		case "json":
			return NewJSONSink(cfg.OutputPath, cfg.OutputFolder), nil
		default:
			return nil, fmt.Errorf("unsupported output format: %s", cfg.OutputFormat)
		}
	}
	return &ConsoleSink{}, nil
}
