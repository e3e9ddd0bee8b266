package app

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis"
	"github.com/xpanvictor/xarvis-voice/internal/config"
	"github.com/xpanvictor/xarvis-voice/internal/constants/prompts"
	"github.com/xpanvictor/xarvis-voice/internal/domains/sys_manager"
	vss "github.com/xpanvictor/xarvis-voice/internal/domains/sys_manager/voice_stream_system"
	"github.com/xpanvictor/xarvis-voice/internal/domains/user"
	"github.com/xpanvictor/xarvis-voice/internal/handlers"
	"github.com/xpanvictor/xarvis-voice/internal/handlers/websocket"
	"github.com/xpanvictor/xarvis-voice/internal/server"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
	"github.com/xpanvictor/xarvis-voice/pkg/assistant"
	"gorm.io/gorm"
)

// App represents the application with all its dependencies
type App struct {
	Config *config.Settings
	Logger *Logger.Logger
	DB     *gorm.DB
	RC     *redis.Client

	VoiceSystem   *vss.VSS
	SystemManager *sys_manager.SystemManager
	Tokens        *user.TokenService

	VoiceHandler *handlers.VoiceHandler
	WSHandler    *websocket.WebSocketHandler

	closers []func() error
}

// NewApp creates a new application instance with all dependencies properly
// wired. db and rc may be nil when no database or redis is configured.
func NewApp(ctx context.Context, cfg *config.Settings, logger *Logger.Logger, db *gorm.DB, rc *redis.Client) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		RC:     rc,
	}

	if err := app.setupDependencies(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}

	return app, nil
}

// setupDependencies initializes all application dependencies
func (a *App) setupDependencies(ctx context.Context) error {
	// 1. collaborators of a turn
	detector, err := newDetector(a.Config, a.Logger)
	if err != nil {
		return err
	}
	transcriber, err := newTranscriber(a.Config, a.Logger)
	if err != nil {
		return err
	}
	synthesizer, err := newSynthesizer(a.Config, a.RC)
	if err != nil {
		return err
	}
	model, closeModel, err := NewLLMFactory(a.Config, a.Logger).CreateModel(ctx)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closeModel)

	history, pruner := newHistory(a.Config, a.DB)
	responder := assistant.NewConversationalResponder(
		model,
		history,
		prompts.Persona(a.Config.LLM.Persona),
		a.Config.LLM.HistoryTurns,
		a.Logger.With("component", "responder"),
	)

	// 2. voice engine
	vssCfg := vss.ConfigFromSettings(a.Config.Voice)
	invoker := vss.NewInvoker(
		transcriber,
		responder,
		synthesizer,
		vss.NewPool(a.Config.Voice.WorkerPoolSize),
		vssCfg.Timeouts,
		a.Logger.With("component", "pipeline"),
	)
	a.VoiceSystem, err = vss.NewVSS(vssCfg, detector, invoker, a.Logger.With("component", "vss"))
	if err != nil {
		return err
	}

	// 3. background tasks
	a.SystemManager = sys_manager.NewSystemManager(a.Logger)
	a.SystemManager.RegisterTask(sys_manager.NewSessionSweepTask(
		a.VoiceSystem, vssCfg.IdleSessionTTL, a.Config.Voice.SweepInterval, a.Logger,
	))
	if pruner != nil && a.Config.LLM.HistoryRetention > 0 {
		a.SystemManager.RegisterTask(sys_manager.NewHistoryPruneTask(
			pruner, a.Config.LLM.HistoryRetention, 0, a.Logger,
		))
	}

	// 4. transport
	a.Tokens = user.NewTokenService(a.Config.Auth.JWTSecret, a.Config.Auth.TokenTTL)
	if !a.Tokens.Enabled() {
		a.Logger.Warn("auth.jwt_secret not configured, voice endpoints are unauthenticated")
	}
	a.VoiceHandler = handlers.NewVoiceHandler(a.VoiceSystem, a.Logger.With("component", "http"))
	a.WSHandler = websocket.NewWebSocketHandler(a.VoiceSystem, a.Config.Server.ReadLimitBytes, a.Logger.With("component", "ws"))

	return nil
}

// Router composes the HTTP surface
func (a *App) Router() *gin.Engine {
	return server.NewRouter(server.Dependencies{
		Config:       a.Config,
		Logger:       a.Logger,
		Tokens:       a.Tokens,
		VoiceHandler: a.VoiceHandler,
		WSHandler:    a.WSHandler,
	})
}

// Start launches the background tasks
func (a *App) Start() error {
	return a.SystemManager.Start()
}

// Close stops background work, ends every session and releases providers.
// It is safe to call on a partially built App.
func (a *App) Close() error {
	var errs []error
	if a.SystemManager != nil && a.SystemManager.IsRunning() {
		errs = append(errs, a.SystemManager.Stop())
	}
	if a.WSHandler != nil {
		errs = append(errs, a.WSHandler.Connections().Close())
	}
	if a.VoiceSystem != nil {
		a.VoiceSystem.Shutdown()
	}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	if a.RC != nil {
		errs = append(errs, a.RC.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
