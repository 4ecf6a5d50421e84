// Package server serves conversations over HTTP and websockets.
package server

import (
	"errors"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/scenechat/internal/chat"
	"github.com/danielpatrickdp/scenechat/internal/matcher"
	"github.com/danielpatrickdp/scenechat/internal/metrics"
)

// #region server
// Options tune the HTTP server.
type Options struct {
	PageTTL   time.Duration
	StaticDir string
}

// Server is the fiber app plus the page registry behind /ws.
type Server struct {
	app     *fiber.App
	factory *chat.Factory
	corpora matcher.CorpusProvider
	pages   *Pages
	log     *zap.Logger
}

// New builds the app and registers its routes. m may be nil.
func New(factory *chat.Factory, corpora matcher.CorpusProvider, m *metrics.Metrics, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PageTTL <= 0 {
		opts.PageTTL = 30 * time.Minute
	}

	var onChange func(int)
	if m != nil {
		onChange = func(n int) { m.ActivePages.Set(float64(n)) }
	}

	app := fiber.New(fiber.Config{
		AppName:               "scenechat",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(otelfiber.Middleware())

	s := &Server{
		app:     app,
		factory: factory,
		corpora: corpora,
		pages:   NewPages(opts.PageTTL, onChange),
		log:     log.Named("server"),
	}
	s.routes(m, opts.StaticDir)
	return s
}

func (s *Server) routes(m *metrics.Metrics, staticDir string) {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if m != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	api := s.app.Group("/api")
	api.Get("/corpus", s.corpus)
	api.Get("/scenes/match", s.match)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(s.serveWS))

	if staticDir != "" {
		s.app.Static("/", staticDir)
	}
}

// App exposes the fiber app for tests and custom listeners.
func (s *Server) App() *fiber.App { return s.app }

// Pages exposes the page registry.
func (s *Server) Pages() *Pages { return s.pages }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Info("http listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown closes every page and stops the listener.
func (s *Server) Shutdown() error {
	s.pages.CloseAll()
	return s.app.Shutdown()
}

// #endregion server

// #region handlers
func (s *Server) corpus(c *fiber.Ctx) error {
	cur := s.corpora.Corpus()
	if cur == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"loaded": false})
	}
	return c.JSON(fiber.Map{
		"loaded":  true,
		"scenes":  cur.Len(),
		"version": cur.Version(),
	})
}

func (s *Server) match(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query parameter q is required"})
	}
	out, err := s.factory.Match(c.UserContext(), q)
	if errors.Is(err, matcher.ErrCorpusUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return err
	}
	return c.JSON(out.View())
}

// #endregion handlers
