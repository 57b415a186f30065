package router

import (
	"foodgram/internal/handlers"
	"foodgram/internal/middleware"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "foodgram_session"

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Users       *handlers.UserHandler
	Tags        *handlers.TagHandler
	Ingredients *handlers.IngredientHandler
	Recipes     *handlers.RecipeHandler
	Google      *handlers.GoogleAuthHandler // optional
}

// NewEngine builds the gin engine with sessions, logging, recovery and the
// user loader installed, and mounts the API.
func NewEngine(sessionSecret string, loadUser gin.HandlerFunc, h Handlers) *gin.Engine {
	handlers.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(sessions.Sessions(sessionName, cookie.NewStore([]byte(sessionSecret))))
	r.Use(loadUser)
	r.Use(middleware.RequestLogger())
	r.HTMLRender = handlers.Templates()

	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	api := r.Group("/api")
	authRequired := middleware.AuthRequired()

	// Users
	users := api.Group("/users")
	{
		users.POST("/", h.Users.Register)
		users.GET("/", h.Users.List)
		users.GET("/me/", authRequired, h.Users.Me)
		users.POST("/set_password/", authRequired, h.Users.SetPassword)
		users.GET("/subscriptions/", authRequired, h.Users.Subscriptions)
		users.GET("/:id/", h.Users.Profile)
		users.POST("/:id/subscribe/", authRequired, h.Users.Subscribe)
		users.DELETE("/:id/subscribe/", authRequired, h.Users.Unsubscribe)
	}

	// Token auth
	api.POST("/auth/token/login/", h.Auth.Login)
	api.POST("/auth/token/logout/", authRequired, h.Auth.Logout)
	if h.Google != nil {
		api.GET("/auth/google/login/", h.Google.Login)
		api.GET("/auth/google/callback/", h.Google.Callback)
	}

	// Reference data
	api.GET("/tags/", h.Tags.List)
	api.GET("/tags/:id/", h.Tags.Detail)
	api.GET("/ingredients/", h.Ingredients.List)
	api.GET("/ingredients/:id/", h.Ingredients.Detail)

	// Recipes
	recipes := api.Group("/recipes")
	{
		recipes.GET("/", h.Recipes.List)
		recipes.POST("/", authRequired, h.Recipes.Create)
		recipes.GET("/download_shopping_cart/", authRequired, h.Recipes.DownloadShoppingCart)
		recipes.GET("/:id/", h.Recipes.Detail)
		recipes.PATCH("/:id/", authRequired, h.Recipes.Update)
		recipes.DELETE("/:id/", authRequired, h.Recipes.Delete)
		recipes.POST("/:id/favorite/", authRequired, h.Recipes.AddFavorite)
		recipes.DELETE("/:id/favorite/", authRequired, h.Recipes.RemoveFavorite)
		recipes.POST("/:id/shopping_cart/", authRequired, h.Recipes.AddToCart)
		recipes.DELETE("/:id/shopping_cart/", authRequired, h.Recipes.RemoveFromCart)
	}
}
