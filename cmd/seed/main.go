// Command seed loads a YAML catalog of categories, products and
// announcements into the storefront database.
//
// Usage:
//
//	go run ./cmd/seed --file seeds/catalog.yaml --drop
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/HSouheill/storefront_backend/config"
	"github.com/HSouheill/storefront_backend/repositories"
	"github.com/HSouheill/storefront_backend/services"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	seedFile string
	dropData bool
	timeout  time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the storefront catalog from a YAML file",
	Long: `Creates categories (parents first), products and announcements through
the same services the admin API uses, so slugs, attribute keys and product
metadata are validated exactly as they are for admin edits.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVarP(&seedFile, "file", "f", "seeds/catalog.yaml", "Catalog YAML file")
	rootCmd.Flags().BoolVar(&dropData, "drop", false, "Delete existing categories, products and announcements first")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
	f, err := os.Open(seedFile)
	if err != nil {
		return err
	}
	catalog, err := LoadCatalog(f)
	f.Close()
	if err != nil {
		return err
	}
	categories, err := OrderCategories(catalog.Categories)
	if err != nil {
		return err
	}

	cfg := config.Load()
	logger, err := config.NewLogger(cfg.Env)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	client, db, err := config.ConnectDB(cfg, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	if dropData {
		for _, name := range []string{config.ProductsCollection, config.CategoriesCollection, config.AnnouncementsCollection} {
			res, err := db.Collection(name).DeleteMany(ctx, bson.M{})
			if err != nil {
				return fmt.Errorf("clear %s: %w", name, err)
			}
			logger.Info("cleared collection", zap.String("collection", name), zap.Int64("deleted", res.DeletedCount))
		}
	}

	return seed(ctx, db, catalog, categories, logger)
}

func seed(ctx context.Context, db *mongo.Database, catalog *Catalog, categories []CategorySeed, logger *zap.Logger) error {
	categoryService := services.NewCategoryService(repositories.NewCategoryRepository(db))
	productService := services.NewProductService(repositories.NewProductRepository(db), categoryService)
	announcementService := services.NewAnnouncementService(repositories.NewAnnouncementRepository(db))

	ids := make(map[string]string, len(categories))
	lookup := func(ref string) (string, bool) {
		id, ok := ids[refKey(ref)]
		return id, ok
	}

	for _, c := range categories {
		var parentID string
		if strings.TrimSpace(c.Parent) != "" {
			parentID, _ = lookup(c.Parent)
		}
		created, err := categoryService.Create(ctx, c.request(parentID))
		if err != nil {
			return fmt.Errorf("category %q: %w", c.Name, err)
		}
		ids[c.Ref()] = created.ID.Hex()
		if alias := refKey(c.Name); alias != c.Ref() {
			if _, taken := ids[alias]; !taken {
				ids[alias] = created.ID.Hex()
			}
		}
		logger.Info("seeded category", zap.String("slug", created.Slug))
	}

	for _, p := range catalog.Products {
		categoryID, ok := lookup(p.Category)
		if !ok {
			// fall back to a category already in the database
			existing, err := categoryService.GetBySlug(ctx, refKey(p.Category))
			if err != nil {
				return fmt.Errorf("product %q: category %q: %w", p.Name, p.Category, err)
			}
			categoryID = existing.ID.Hex()
		}
		created, err := productService.Create(ctx, p.request(categoryID))
		if err != nil {
			return fmt.Errorf("product %q: %w", p.Name, err)
		}
		logger.Info("seeded product", zap.String("slug", created.Slug))
	}

	for _, a := range catalog.Announcements {
		if _, err := announcementService.Create(ctx, a.request()); err != nil {
			return fmt.Errorf("announcement %q: %w", a.Text, err)
		}
	}

	logger.Info("seed complete",
		zap.Int("categories", len(categories)),
		zap.Int("products", len(catalog.Products)),
		zap.Int("announcements", len(catalog.Announcements)))
	return nil
}
