package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	// The question endpoint is the only route guarded by the rate limiter;
	// the proxy path is an independent collaborator sharing only the cache.
	api.POST("/ask", s.askQuestion, s.middleware.RateLimit.Handler())

	api.Any("/proxy/:target", s.proxyRequest)
	api.Any("/proxy/:target/*", s.proxyRequest)
}
