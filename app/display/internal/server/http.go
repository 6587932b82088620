package server

import (
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iWorld-y/workforce_radar/app/display/internal/conf"
	"github.com/iWorld-y/workforce_radar/app/display/internal/service"
)

func NewHTTPServer(c *conf.Server, s *service.DisplayService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
	}

	srv := http.NewServer(opts...)

	r := srv.Route("/v1")
	r.GET("/runs", s.ListRuns)
	r.GET("/runs/{id}/impact", s.GetRunImpact)
	r.GET("/analytics/comparative", s.GetComparative)
	r.POST("/analytics/comparative/refresh", s.RefreshComparative)

	// 批处理指标
	srv.Handle("/metrics", promhttp.Handler())

	return srv
}
