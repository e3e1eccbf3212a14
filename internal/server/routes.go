package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() {
	api := s.App.Group("/api")
	api.Post("/upload", s.handleUpload)
	api.Post("/process", s.handleProcess)
	api.Get("/files", s.handleFiles)
	api.Get("/view/:folder/:filename", s.handleView)
	api.Get("/download/:folder/:filename", s.handleDownload)

	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}
