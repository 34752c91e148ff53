// Package web provides the HTTP server of the bank admin panel:
// routing, the setup gate, session-guarded API groups, and scheduled
// maintenance.
package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/evergreenbank/panel/config"
	"github.com/evergreenbank/panel/database"
	"github.com/evergreenbank/panel/logger"
	"github.com/evergreenbank/panel/web/controller"
	"github.com/evergreenbank/panel/web/job"
	"github.com/evergreenbank/panel/web/middleware"
	"github.com/evergreenbank/panel/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

// Server is the panel's web server, owning the gin engine, the service
// graph, and the cron scheduler.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	auth     *controller.AuthController
	setup    *controller.SetupController
	users    *controller.UserController
	settings *controller.SettingController

	settingService *service.SettingService
	sessionService *service.SessionService
	setupService   *service.SetupService
	userService    *service.UserService

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a web server with its service graph wired onto the
// process store handle.
func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())

	db := database.GetDB()
	settingService := service.NewSettingService(db)
	notificationService := service.NewNotificationService(settingService)

	return &Server{
		ctx:    ctx,
		cancel: cancel,

		settingService: settingService,
		sessionService: service.NewSessionService(db, settingService),
		setupService:   service.NewSetupService(db, settingService),
		userService:    service.NewUserService(db, notificationService),
	}
}

// initRouter initializes gin, registers the setup gate and the API
// controllers, and returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	// Every API route passes the setup gate first; only the setup
	// surface is exempt while the gate is pending.
	api := engine.Group("/api")
	api.Use(middleware.SetupGate(s.setupService))

	s.auth = controller.NewAuthController(api, s.userService, s.sessionService, s.settingService)
	s.setup = controller.NewSetupController(api, s.setupService)
	s.users = controller.NewUserController(api, s.userService, s.sessionService)
	s.settings = controller.NewSettingController(api, s.settingService, s.sessionService)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// startTask schedules the background maintenance jobs.
func (s *Server) startTask() {
	s.cron.AddJob("@every 10m", job.NewClearSessionJob(s.sessionService))
}

// printStartupChecklist logs the deployment state the way operators
// expect to see it on boot.
func (s *Server) printStartupChecklist() {
	setupComplete := s.setupService.IsComplete()
	state := func(done bool) string {
		if done {
			return "COMPLETED"
		}
		return "PENDING"
	}

	logger.Infof("===== %s STARTUP CHECKLIST =====", s.settingService.GetBankName())
	logger.Info("database connection: SUCCESS")
	logger.Infof("setup wizard: %s", state(setupComplete))
	logger.Infof("admin account: %s", state(setupComplete))
	logger.Infof("session security: CONFIGURED (%d minutes timeout)", s.settingService.GetSessionTimeout())
	if !setupComplete {
		logger.Info("complete the setup wizard at /api/setup to finish configuration")
	}
}

// Start initializes the router and the scheduler and begins serving.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New()
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.startTask()
	s.printStartupChecklist()
	logger.Infof("web server running on %s", listener.Addr())

	s.httpServer = &http.Server{Handler: engine}
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("web server:", err)
		}
	}()

	return nil
}

// Stop shuts the server and the scheduler down.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
