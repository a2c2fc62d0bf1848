package server

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"ctchen222/Hotseat-Tic-Tac-Toe/internal/api/controller"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/api/response"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/api/service"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/hub"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

//go:embed web
var webFS embed.FS

type Server struct {
	hub             *hub.Hub
	matchService    service.MatchService
	matchController *controller.MatchController
	upgrader        websocket.Upgrader
}

func NewServer(h *hub.Hub, matchService service.MatchService, tokens service.TokenIssuer) *Server {
	return &Server{
		hub:             h,
		matchService:    matchService,
		matchController: controller.NewMatchController(matchService, tokens),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Handler builds the gin engine with every route.
func (s *Server) Handler() http.Handler {
	validator.RegisterGinRules()

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})

	api := r.Group("/api/matches")
	{
		api.POST("", s.matchController.Start)

		session := api.Group("/:id", s.matchController.RequireSessionToken())
		session.GET("", s.matchController.Get)
		session.DELETE("", s.matchController.End)
		session.POST("/moves", s.matchController.Move)
		session.GET("/rounds", s.matchController.Rounds)
	}

	r.GET("/ws/matches/:id", s.matchController.RequireSessionToken(), s.handleWebSocket)

	r.GET("/", serveAsset("index.html", "text/html; charset=utf-8"))
	r.GET("/app.js", serveAsset("app.js", "text/javascript; charset=utf-8"))
	r.GET("/style.css", serveAsset("style.css", "text/css; charset=utf-8"))

	return r
}

// handleWebSocket upgrades the connection and hands it to the hub until the
// view goes away.
func (s *Server) handleWebSocket(c *gin.Context) {
	sessionID := c.Param("id")
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	// The token only proves the page once held the session.
	if _, err := s.matchService.Get(ctx, sessionID); err != nil {
		response.ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	if err := s.hub.Serve(ctx, sessionID, conn, s.matchService); err != nil {
		slog.ErrorContext(ctx, "Websocket session failed", "session.id", sessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Websocket session failed")
	}
}

// serveAsset writes an embedded file as is.
func serveAsset(name, contentType string) gin.HandlerFunc {
	data, err := fs.ReadFile(webFS, "web/"+name)
	if err != nil {
		panic(err)
	}
	return func(c *gin.Context) {
		c.Data(http.StatusOK, contentType, data)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
			slog.ErrorContext(c.Request.Context(), "Request failed", attrs...)
			return
		}
		slog.DebugContext(c.Request.Context(), "Request handled", attrs...)
	}
}
