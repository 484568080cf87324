package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/plateful/platesearch/internal/ai"
	"github.com/plateful/platesearch/internal/ai/mock"
	"github.com/plateful/platesearch/internal/ai/openai"
	"github.com/plateful/platesearch/internal/catalog"
	catalogpg "github.com/plateful/platesearch/internal/catalog/postgres"
	"github.com/plateful/platesearch/internal/engine"
	"github.com/plateful/platesearch/internal/factories"
	"github.com/plateful/platesearch/internal/feedback"
	"github.com/plateful/platesearch/internal/models"
	"github.com/plateful/platesearch/internal/server"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "platesearch",
	Short: "Personalized dish search and ranking engine",
	Long:  `platesearch ranks menu items from nearby restaurants against a free-text query and the caller's stated preferences, with per-item explanations and feedback capture.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the search engine over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		return runServe(cmd.Context(), cfg)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate a synthetic restaurant catalog and ingest it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		return runSeed(cmd.Context(), cfg)
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.json)")

	serveCmd.Flags().String("http-addr", ":8080", "HTTP listen address")
	serveCmd.Flags().Int("max-candidates", 200, "Maximum candidates retained per search")
	serveCmd.Flags().Int("default-limit", 20, "Default result page size")
	serveCmd.Flags().Int("scoring-workers", 8, "Scoring worker pool size")
	viper.BindPFlags(serveCmd.Flags())

	seedCmd.Flags().Int("seed", 42, "Random seed for catalog generation")
	seedCmd.Flags().Int("initial-restaurants", 50, "Number of restaurants to generate")
	seedCmd.Flags().Int("items-per-restaurant", 12, "Menu items per restaurant")
	viper.BindPFlags(seedCmd.Flags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	viper.AutomaticEnv()
}

func runServe(ctx context.Context, cfg *models.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, eventStore, pool, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	sink, err := feedback.NewSinkFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to create event sink: %w", err)
	}
	defer sink.Close()

	logger := feedback.NewLogger(eventStore, eventStore, sink, cfg.FeedbackQueueSize, cfg.FeedbackMaxRetries)
	defer logger.Close()

	eng, err := engine.New(cfg, store, provider, logger)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}
	defer eng.Close()

	return server.New(cfg.HTTPAddr, eng).Run(ctx)
}

func runSeed(ctx context.Context, cfg *models.Config) error {
	rand.Seed(int64(cfg.Seed))

	store, _, pool, err := buildStores(ctx, cfg)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	pipeline, err := catalog.NewPipeline(store, provider, cfg.TagLabels())
	if err != nil {
		return fmt.Errorf("failed to build ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	restaurantFactory := &factories.RestaurantFactory{}
	menuItemFactory := &factories.MenuItemFactory{}

	restaurants := make([]*models.Restaurant, cfg.InitialRestaurants)
	items := make([]*models.MenuItem, 0, cfg.InitialRestaurants*cfg.ItemsPerRestaurant)
	for i := range restaurants {
		restaurants[i] = restaurantFactory.CreateRestaurant(cfg)
		for j := 0; j < cfg.ItemsPerRestaurant; j++ {
			item := menuItemFactory.CreateMenuItem(restaurants[i])
			items = append(items, &item)
		}
	}

	if err := pipeline.IngestRestaurants(ctx, restaurants); err != nil {
		return fmt.Errorf("failed to ingest restaurants: %w", err)
	}

	bar := progressbar.Default(int64(len(items)), "embedding menu items")
	if err := pipeline.IngestMenuItems(ctx, items, func() { bar.Add(1) }); err != nil {
		return fmt.Errorf("failed to ingest menu items: %w", err)
	}

	log.Printf("seeded %d restaurants with %d menu items", len(restaurants), len(items))
	return nil
}

// buildStores wires either the in-memory stores or the Postgres-backed
// ones, sharing a single connection pool between catalog and feedback.
func buildStores(ctx context.Context, cfg *models.Config) (*catalog.Store, feedback.EventStore, *pgxpool.Pool, error) {
	if !cfg.Database.Enabled {
		return catalog.NewMemoryStore(), feedback.NewMemoryStore(), nil, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.ConnString())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	store := &catalog.Store{
		Restaurants: catalogpg.NewRestaurantRepository(pool),
		MenuItems:   catalogpg.NewMenuItemRepository(pool),
	}
	return store, feedback.NewPostgresStore(pool), pool, nil
}

// buildProvider returns the OpenAI-compatible provider when an embedding
// host is configured, otherwise the deterministic local one.
func buildProvider(cfg *models.Config) (ai.Provider, error) {
	if cfg.AI.EmbeddingHost == "" {
		log.Println("no embedding host configured, using deterministic local AI provider")
		return mock.NewProvider(), nil
	}
	provider, err := openai.NewProvider(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}
	return provider, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
