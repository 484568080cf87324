package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type KafkaConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	BrokerList       string `mapstructure:"broker_list"`
	ImpressionsTopic string `mapstructure:"impressions_topic"`
	FeedbackTopic    string `mapstructure:"feedback_topic"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type AIConfig struct {
	EmbeddingHost    string        `mapstructure:"embedding_host"`
	EmbeddingModel   string        `mapstructure:"embedding_model"`
	ClassifierHost   string        `mapstructure:"classifier_host"`
	ClassifierModel  string        `mapstructure:"classifier_model"`
	InferenceTimeout time.Duration `mapstructure:"inference_timeout"`
}

type Config struct {
	Seed     int    `mapstructure:"seed"`
	HTTPAddr string `mapstructure:"http_addr"`

	// Default search location used when the request carries a malformed one
	CityName string  `mapstructure:"city_name"`
	CityLat  float64 `mapstructure:"city_latitude"`
	CityLon  float64 `mapstructure:"city_longitude"`

	// Retrieval
	DefaultRadiusKm float64 `mapstructure:"default_radius_km"`
	MaxCandidates   int     `mapstructure:"max_candidates"`
	DefaultLimit    int     `mapstructure:"default_limit"`

	// Scoring
	Weights        ScoreWeights `mapstructure:"weights"`
	ScoringWorkers int          `mapstructure:"scoring_workers"`
	RecentLikes    int          `mapstructure:"recent_likes"`

	// Tag inference
	TagVocabulary []string `mapstructure:"tag_vocabulary"`

	// Feedback logging
	FeedbackQueueSize  int    `mapstructure:"feedback_queue_size"`
	FeedbackMaxRetries int    `mapstructure:"feedback_max_retries"`
	OutputPath         string `mapstructure:"output_path"`
	OutputFolder       string `mapstructure:"output_folder"`
	OutputFormat       string `mapstructure:"output_format"`
	OutputDestination  string `mapstructure:"output_destination"`

	// Seeding
	InitialRestaurants int `mapstructure:"initial_restaurants"`
	ItemsPerRestaurant int `mapstructure:"items_per_restaurant"`

	AI           AIConfig           `mapstructure:"ai"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("http_addr", ":8080")
	viper.SetDefault("city_name", "New York")
	viper.SetDefault("city_latitude", 40.7128)
	viper.SetDefault("city_longitude", -74.0060)
	viper.SetDefault("default_radius_km", 10.0)
	viper.SetDefault("max_candidates", 200)
	viper.SetDefault("default_limit", 20)
	viper.SetDefault("scoring_workers", 8)
	viper.SetDefault("recent_likes", 5)
	viper.SetDefault("feedback_queue_size", 1024)
	viper.SetDefault("feedback_max_retries", 3)
	viper.SetDefault("initial_restaurants", 50)
	viper.SetDefault("items_per_restaurant", 12)
	viper.SetDefault("ai.inference_timeout", "2s")

	w := DefaultScoreWeights()
	viper.SetDefault("weights.similarity", w.Similarity)
	viper.SetDefault("weights.tag_match", w.TagMatch)
	viper.SetDefault("weights.rating", w.Rating)
	viper.SetDefault("weights.price", w.Price)
	viper.SetDefault("weights.distance", w.Distance)
	viper.SetDefault("weights.likes_cap", w.LikesCap)
}

// TagLabels returns the configured tag vocabulary, falling back to the
// built-in default when none is set.
func (cfg *Config) TagLabels() []string {
	if len(cfg.TagVocabulary) > 0 {
		return cfg.TagVocabulary
	}
	return DefaultTagVocabulary
}

// DefaultLocation is the fallback location for malformed request locations.
func (cfg *Config) DefaultLocation() Location {
	return Location{Lat: cfg.CityLat, Lon: cfg.CityLon}
}
