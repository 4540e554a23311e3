package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/thanhnp/ord-store/internal/api/handlers"
	"github.com/thanhnp/ord-store/internal/api/middleware"
	"github.com/thanhnp/ord-store/internal/storage"
)

// Router wraps the Gin router with handlers
type Router struct {
	engine         *gin.Engine
	logger         *zap.Logger
	metricsEnabled bool
	blockHandler   *handlers.BlockHandler
	txHandler      *handlers.TxHandler
	outputHandler  *handlers.OutputHandler
}

// NewRouter creates a new Router with all handlers
func NewRouter(stores *storage.Stores, logger *zap.Logger, metricsEnabled bool) *Router {
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		engine:         gin.New(),
		logger:         logger.Named("api"),
		metricsEnabled: metricsEnabled,
		blockHandler:   handlers.NewBlockHandler(stores.TxStore),
		txHandler:      handlers.NewTxHandler(stores.TxStore, stores.OutputStore, stores.TxOutputIndex),
		outputHandler:  handlers.NewOutputHandler(stores.OutputStore),
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// setupMiddleware configures middleware
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.CORS())
}

// setupRoutes configures API routes
func (r *Router) setupRoutes() {
	// Health check
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if r.metricsEnabled {
		r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/api/v1")
	{
		// Block routes
		blocks := v1.Group("/blocks/:number/transactions")
		{
			blocks.POST("", r.blockHandler.UpsertTransactions)
			blocks.GET("", r.blockHandler.GetTransactions)
			blocks.DELETE("", r.blockHandler.DeleteTransactions)

			tx := blocks.Group("/:hash", middleware.ValidateTxHash("hash"))
			{
				tx.GET("/outputs-fetched", r.txHandler.GetOutputsFetched)
				tx.PUT("/outputs-fetched", r.txHandler.SetOutputsFetched)
				tx.PUT("/outputs", r.txHandler.UpdateOutputs)
			}
		}

		// Transaction routes
		v1.GET("/transactions/:hash/outputs", middleware.ValidateTxHash("hash"), r.txHandler.GetOutputHashes)

		// Output routes
		outputs := v1.Group("/outputs/:hash", middleware.ValidateOutputHash("hash"))
		{
			outputs.GET("", r.outputHandler.Get)
			outputs.POST("/inscriptions", r.outputHandler.AddInscription)
		}
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
