package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "github.com/xpanvictor/xarvis-voice/docs"
	"github.com/xpanvictor/xarvis-voice/internal/config"
	"github.com/xpanvictor/xarvis-voice/internal/domains/user"
	"github.com/xpanvictor/xarvis-voice/internal/handlers"
	"github.com/xpanvictor/xarvis-voice/internal/handlers/websocket"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
)

type Dependencies struct {
	Config       *config.Settings
	Logger       *Logger.Logger
	Tokens       *user.TokenService
	VoiceHandler *handlers.VoiceHandler
	WSHandler    *websocket.WebSocketHandler
}

// NewRouter builds the gin engine with every route mounted
func NewRouter(dep Dependencies) *gin.Engine {
	if !dep.Config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(handlers.RequestLoggerMiddleware(dep.Logger))
	r.Use(handlers.ErrorHandlerMiddleware(dep.Logger))
	r.Use(handlers.CORSMiddleware())

	InitializeRoutes(r, dep)
	return r
}

func InitializeRoutes(r *gin.Engine, dep Dependencies) {
	r.GET("/", func(ctx *gin.Context) { ctx.JSON(http.StatusOK, gin.H{"message": "Server healthy"}) })
	r.GET("/health", dep.VoiceHandler.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := handlers.AuthMiddleware(dep.Tokens, dep.Logger)

	api := r.Group("/api/v1")
	dep.VoiceHandler.RegisterRoutes(api, auth)

	dep.WSHandler.RegisterRoutes(r, auth)
}
