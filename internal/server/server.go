// Package server is the HTTP front end: it accepts export uploads, runs the
// pipeline and serves the generated dashboard tables.
package server

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/config"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/metrics"
	"github.com/Jeet009/Retraction-Watch-Dashboard-Data-Generator-Portal/internal/pipeline"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/encoding/json"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// bodySlack covers multipart framing on top of the file itself.
const bodySlack = 1 << 20

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config

	log      *logrus.Logger
	registry *prometheus.Registry
	metrics  *metrics.Recorder
	uploads  *rate.Limiter

	// runs serializes pipeline runs; uploads overwrite the same input file.
	runs sync.Mutex
}

// New creates a new server with middleware and routes configured.
func New(cfg *config.Config, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	reg := prometheus.NewRegistry()

	app := fiber.New(fiber.Config{
		BodyLimit:   int(cfg.MaxUploadBytes()) + bodySlack,
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return jsonError(c, code, message)
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:      app,
		Cfg:      cfg,
		log:      log,
		registry: reg,
		metrics:  metrics.New(reg),
		uploads:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.Server.UploadsPerMinute)), cfg.Server.UploadsPerMinute),
	}
	s.routes()
	return s
}

// Start listens on the configured address.
func (s *Server) Start() error {
	s.log.WithField("addr", s.Cfg.Server.Addr).Info("starting server")
	return s.App.Listen(s.Cfg.Server.Addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

// runPipeline runs the pipeline on input and returns the log lines it
// produced alongside any error.
func (s *Server) runPipeline(ctx context.Context, input string) (string, error) {
	s.runs.Lock()
	defer s.runs.Unlock()

	var buf bytes.Buffer
	runLog := logrus.New()
	runLog.SetLevel(s.log.GetLevel())
	runLog.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	runLog.SetOutput(io.MultiWriter(&buf, s.log.Out))

	opts := pipeline.FromConfig(s.Cfg)
	opts.Input = input
	opts.Logger = runLog
	opts.Metrics = s.metrics

	_, err := pipeline.Run(ctx, opts)
	return buf.String(), err
}
