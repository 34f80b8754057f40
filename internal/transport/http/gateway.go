package http

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/trip-planner-nosql/internal/config"
	appmiddleware "github.com/trip-planner-nosql/internal/transport/http/middleware"
	"go.uber.org/zap"
)

// NewGateway routes the public surface to the three services. Each request
// is forwarded once with X-Forwarded-* headers set; an unreachable upstream
// yields 502.
func NewGateway(cfg *config.Config, log *zap.Logger) (http.Handler, error) {
	users, err := newProxy(cfg.UserServiceUpstream, "", log)
	if err != nil {
		return nil, err
	}
	trips, err := newProxy(cfg.TripServiceUpstream, "", log)
	if err != nil {
		return nil, err
	}
	notifications, err := newProxy(cfg.NotificationServiceUpstream, "/notifications", log)
	if err != nil {
		return nil, err
	}

	r := newBaseRouter(cfg, log)
	for _, p := range []string{"/user", "/user/*", "/friend/*"} {
		r.Handle(p, users)
	}
	for _, p := range []string{"/trips", "/trips/*"} {
		r.Handle(p, trips)
	}
	for _, p := range []string{"/notifications", "/notifications/*"} {
		r.Handle(p, notifications)
	}
	return r, nil
}

func newProxy(rawURL, stripPrefix string, log *zap.Logger) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid upstream %q", rawURL)
	}
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			if stripPrefix != "" {
				path := strings.TrimPrefix(pr.In.URL.Path, stripPrefix)
				if path == "" {
					path = "/"
				}
				pr.Out.URL.Path = path
				pr.Out.URL.RawPath = ""
			}
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			appmiddleware.Log(r.Context()).Error("upstream unreachable",
				zap.String("upstream", target.Host), zap.String("path", r.URL.Path), zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"success":false,"message":"bad gateway"}`))
		},
	}, nil
}
