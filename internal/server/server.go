package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ecograph/backend/internal/db"
	"github.com/ecograph/backend/internal/queue"
	mid "github.com/ecograph/backend/internal/server/middleware"
	"github.com/ecograph/backend/internal/storage"
	"github.com/ecograph/backend/internal/util"
	"github.com/ecograph/backend/pkg/graph"
	"github.com/ecograph/backend/pkg/logger"
	"github.com/ecograph/backend/pkg/store"
	"github.com/ecograph/backend/pkg/store/memory"
	storeneo4j "github.com/ecograph/backend/pkg/store/neo4j"
	storepgx "github.com/ecograph/backend/pkg/store/pgx"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	jwksUrl := util.GetEnv("AUTH_URL") + "/jwks"
	k, err := keyfunc.NewDefault([]string{jwksUrl})
	if err != nil {
		logger.Fatal("Failed to load jwks keys", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	graphStore := newGraphStore(ctx)
	defer graphStore.Close(context.Background())

	coordinator, err := graph.NewCoordinator(graph.NewCoordinatorParams{Store: graphStore})
	if err != nil {
		logger.Fatal("Failed to create graph coordinator", "err", err)
	}

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}

	queues := []string{queue.ImportQueue}
	if err := queue.SetupQueues(ch, queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	s3 := storage.NewS3Client(ctx)

	masterAPIKey := util.GetEnv("MASTER_API_KEY")
	masterUserID, _ := strconv.ParseInt(util.GetEnv("MASTER_USER_ID"), 10, 64)
	masterUserRole := util.GetEnv("MASTER_USER_ROLE")

	e.Use(mid.AppContextMiddleware(conn, ch, &k, s3, graphStore, coordinator, masterAPIKey, masterUserID, masterUserRole))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("512M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// newGraphStore picks the graph store adapter from GRAPH_ADAPTER:
// neo4j (default), postgres, or memory.
func newGraphStore(ctx context.Context) store.GraphStore {
	adapter := util.GetEnvString("GRAPH_ADAPTER", "neo4j")

	switch adapter {
	case "postgres":
		s, err := storepgx.NewStore(ctx, storepgx.NewStoreParams{
			DatabaseURL: util.GetEnvString("GRAPH_DATABASE_URL", util.GetEnv("DATABASE_URL")),
		})
		if err != nil {
			logger.Fatal("Could not connect to Postgres graph store", "err", err)
		}
		return s
	case "memory":
		return memory.New()
	default:
		s, err := storeneo4j.NewStore(ctx, storeneo4j.NewStoreParams{
			URI:      util.GetEnv("NEO4J_URI"),
			Username: util.GetEnv("NEO4J_USERNAME"),
			Password: util.GetEnv("NEO4J_PASSWORD"),
		})
		if err != nil {
			logger.Fatal("Could not connect to Neo4j", "err", err)
		}
		return s
	}
}
