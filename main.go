package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/justArale/recipe-book-server/core"
	"github.com/justArale/recipe-book-server/handlers/api/images"
	"github.com/justArale/recipe-book-server/handlers/api/recipes"
	"github.com/justArale/recipe-book-server/handlers/api/users"
	"github.com/justArale/recipe-book-server/handlers/auth"
	authMiddleware "github.com/justArale/recipe-book-server/middleware"
	"github.com/justArale/recipe-book-server/service"
	"github.com/justArale/recipe-book-server/stores"
)

func setupRouter(engine *service.Engine, blobs core.BlobStore, authHandler *auth.Handler, tokens *auth.TokenManager) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "Origin", "Host", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	requireAuth := authMiddleware.AuthJWT(tokens)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		r.With(requireAuth).Get("/verify", authHandler.HandleVerify)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/recipes", recipes.HandleListAll(engine))

		r.Route("/user", func(r chi.Router) {
			r.Get("/", users.HandleList(engine))
			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", users.HandleGet(engine))

				r.Group(func(r chi.Router) {
					r.Use(requireAuth)
					r.Put("/", users.HandleUpdate(engine))
					r.Put("/change-password", users.HandleChangePassword(engine))
					r.Delete("/", users.HandleDelete(engine))
					r.Delete("/avatar", users.HandleDeleteAvatar(engine))
				})

				r.Route("/recipes", func(r chi.Router) {
					r.Get("/", recipes.HandleListByUser(engine))
					r.Get("/{recipeId}", recipes.HandleGet(engine))

					r.Group(func(r chi.Router) {
						r.Use(requireAuth)
						r.Post("/", recipes.HandleCreate(engine))
						r.Put("/{recipeId}", recipes.HandleUpdate(engine))
						r.Delete("/{recipeId}", recipes.HandleDelete(engine))
						r.Delete("/{recipeId}/image", recipes.HandleDeleteImage(engine))
					})
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/upload-recipe-image", images.HandleUploadRecipeImage(blobs))
			r.Post("/upload-avatar", images.HandleUploadAvatar(blobs))
		})
	})

	// With filesystem blob storage the uploaded URLs point back at this
	// server, so mount the media directory.
	if os.Getenv("BLOB_STORAGE_TYPE") == "filesystem" {
		basePath := os.Getenv("BLOB_STORAGE_PATH")
		if basePath == "" {
			basePath = "./media"
		}
		fileServer := http.StripPrefix("/media/", http.FileServer(http.Dir(basePath)))
		r.Get("/media/*", fileServer.ServeHTTP)
	}

	return r
}

func waitForShutdown(server *http.Server) {
	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-signalC

	logrus.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithField("error", err).Error("Forced shutdown")
	}
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":5005", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	store := stores.GetStore()
	blobs := stores.GetBlobStore()

	creds := auth.BcryptVerifier{}
	tokens := auth.NewTokenManager([]byte(os.Getenv("JWT_SECRET")))
	engine := service.NewEngine(store.Users(), store.Recipes(), blobs, creds)
	authHandler := auth.NewHandler(store.Users(), tokens, creds)

	r := setupRouter(engine, blobs, authHandler, tokens)

	server := &http.Server{Addr: *listenAddress, Handler: r}
	go func() {
		logrus.WithField("addr", *listenAddress).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	waitForShutdown(server)
}
