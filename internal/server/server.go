/*
Copyright (c) 2025 Jinja-Go Project

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package server exposes the template engine as an HTTP render service.
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/work-obs/jinja-go/internal/auth"
	"github.com/work-obs/jinja-go/pkg/api"
	"github.com/work-obs/jinja-go/pkg/config"
	"github.com/work-obs/jinja-go/pkg/template"
	"github.com/work-obs/jinja-go/pkg/values"
)

const version = "1.0.0"

// Server is the HTTP render service; it serves HTTPS when TLS files are
// configured.
type Server struct {
	httpServer *http.Server
	jwtManager *auth.JWTManager
	env        *template.Environment
	config     *config.Config
	router     *gin.Engine
	logger     *slog.Logger
}

// New creates a render server over the given engine environment.
func New(cfg *config.Config, env *template.Environment) (*Server, error) {
	jwtManager, err := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT manager: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		jwtManager: jwtManager,
		env:        env,
		config:     cfg,
		router:     router,
		logger:     slog.Default().With("component", "render-server"),
	}
	router.Use(server.loggingMiddleware())
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
	return server, nil
}

// Start serves until the listener fails or the server is stopped. TLS is
// used when certificate files are configured.
func (s *Server) Start() error {
	if s.config.TLSCertFile != "" && s.config.TLSKeyFile != "" {
		return s.httpServer.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
	}
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router, which tests drive directly.
func (s *Server) Handler() http.Handler {
	return s.router
}

// IssueToken creates an API token, used at startup to print an initial
// credential for the operator.
func (s *Server) IssueToken(userID string, roles []string) (string, error) {
	return s.jwtManager.GenerateToken(userID, roles)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")
	if !s.config.DisableServerAuth {
		v1.Use(s.authMiddleware())
	}
	{
		v1.POST("/render", s.renderTemplate)
		v1.GET("/templates/:name", s.getTemplateSource)
	}
}

// authMiddleware enforces a Bearer token with the render role.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		const bearerPrefix = "Bearer "
		if len(authHeader) <= len(bearerPrefix) || authHeader[:len(bearerPrefix)] != bearerPrefix {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "Bearer token required",
			})
			c.Abort()
			return
		}
		claims, err := s.jwtManager.ValidateToken(authHeader[len(bearerPrefix):])
		if err != nil {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "Invalid or expired token",
			})
			c.Abort()
			return
		}
		if !claims.HasRole("render") {
			c.JSON(http.StatusForbidden, api.ErrorResponse{
				Code:    http.StatusForbidden,
				Message: "Missing render role",
			})
			c.Abort()
			return
		}
		c.Set("claims", claims)
		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.FullPath() == "/health" {
			return
		}
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Status:    "healthy",
		Version:   version,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// renderTemplate renders a named or inline template against the supplied
// values.
func (s *Server) renderTemplate(c *gin.Context) {
	var req api.RenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid request format",
			Details: map[string]interface{}{"error": err.Error()},
		})
		return
	}
	if (req.Name == "") == (req.Template == "") {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Exactly one of name or template must be set",
		})
		return
	}

	var tmpl *template.Template
	var err error
	if req.Name != "" {
		tmpl, err = s.env.LoadTemplate(req.Name)
	} else {
		tmpl = template.New(s.env)
		err = tmpl.Load(req.Template)
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{
			Code:    http.StatusUnprocessableEntity,
			Message: "Template failed to load",
			Details: map[string]interface{}{"error": err.Error()},
		})
		return
	}

	output, err := tmpl.RenderAsString(values.FromMap(req.Values))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{
			Code:    http.StatusUnprocessableEntity,
			Message: "Render failed",
			Details: map[string]interface{}{"error": err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, api.RenderResponse{Output: output})
}

// getTemplateSource returns the raw source of a stored template.
func (s *Server) getTemplateSource(c *gin.Context) {
	name := c.Param("name")
	source, ok := s.env.ReadSource(name)
	if !ok {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Code:    http.StatusNotFound,
			Message: fmt.Sprintf("Template %s not found", name),
		})
		return
	}
	c.JSON(http.StatusOK, api.TemplateSourceResponse{Name: name, Source: source})
}
