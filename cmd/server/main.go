package main

import (
	"fmt"
	"os"

	"foodgram/internal/auth"
	"foodgram/internal/config"
	"foodgram/internal/db"
	"foodgram/internal/handlers"
	"foodgram/internal/logger"
	"foodgram/internal/middleware"
	"foodgram/internal/router"
	"foodgram/internal/services"
	"foodgram/internal/store"
	"foodgram/internal/utils"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "foodgram",
		Short:         "Foodgram recipe service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema, seed reference data, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := boot()
			if err != nil {
				return err
			}
			defer logger.Close()
			db.Init(cfg)
			db.Close()
			green := color.New(color.FgGreen, color.Bold)
			green.Println("✓ schema is up to date")
			if cfg.Seed {
				green.Println("✓ reference tags and ingredients seeded")
			}
			return nil
		},
	})
	return root
}

func boot() (config.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.IsProduction())
	return cfg, nil
}

func serve() error {
	cfg, err := boot()
	if err != nil {
		return err
	}
	defer logger.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	cache := utils.InitCache(cfg.CacheSize)
	revoked := auth.NewRevocations(cfg.RevokedTokensSize)
	db.Init(cfg)
	defer db.Close()

	users := store.NewUsers(db.DB)
	recipes := store.NewRecipes(db.DB)
	guard := services.NewRelationGuard(db.DB)
	shopping := services.NewShoppingService(store.NewCart(db.DB))
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	h := router.Handlers{
		Auth:        handlers.NewAuthHandler(users, issuer, revoked),
		Users:       handlers.NewUserHandler(users, store.NewFollows(db.DB), recipes, guard, cfg.PageSize),
		Tags:        handlers.NewTagHandler(store.NewTags(db.DB, cache, cfg.CacheTTL)),
		Ingredients: handlers.NewIngredientHandler(store.NewIngredients(db.DB, cache, cfg.CacheTTL)),
		Recipes:     handlers.NewRecipeHandler(recipes, guard, shopping, cfg.PageSize),
	}
	if cfg.GoogleClientID != "" {
		h.Google = handlers.NewGoogleAuthHandler(users, issuer, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.SiteURL)
		logger.Info("Google sign-in enabled")
	}
	r := router.NewEngine(cfg.SessionSecret, middleware.LoadUser(users, issuer, revoked), h)

	logger.Info("Foodgram server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		return fmt.Errorf("run server: %w", err)
	}
	return nil
}
