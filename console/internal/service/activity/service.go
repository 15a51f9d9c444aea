package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Astemirdum/library-admin/console/config"
	"github.com/Astemirdum/library-admin/console/internal/errs"
	"github.com/Astemirdum/library-admin/pkg/circuit_breaker"
	"github.com/Astemirdum/library-admin/pkg/kafka"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Service struct {
	log    *zap.Logger
	client *http.Client
	cfg    config.ActivityHTTPServer
	cb     circuit_breaker.CircuitBreaker
}

func NewService(log *zap.Logger, cfg config.Config) *Service {
	return &Service{
		log:    log.Named("activity"),
		client: &http.Client{Timeout: 5 * time.Second},
		cfg:    cfg.ActivityHTTPServer,
		cb:     circuit_breaker.New(20, 10*time.Second, 0.5, 2),
	}
}

// Enabled reports whether an activity service is configured.
func (s *Service) Enabled() bool {
	return s.cfg.Host != ""
}

type listResponse struct {
	Items []kafka.EventActivity `json:"items"`
}

func (s *Service) Recent(ctx context.Context, limit int) ([]kafka.EventActivity, int, error) {
	q := url.Values{"limit": []string{strconv.Itoa(limit)}}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("http://%s/api/v1/activity?%s", net.JoinHostPort(s.cfg.Host, s.cfg.Port), q.Encode()),
		http.NoBody)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	req.Header.Set("Accept", echo.MIMEApplicationJSON)

	var resp *http.Response
	if err := s.cb.Call(func() error {
		resp, err = s.client.Do(req)
		return err
	}); err != nil {
		return nil, http.StatusServiceUnavailable, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, &errs.StatusError{Code: resp.StatusCode}
	}
	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, http.StatusBadGateway, err
	}
	return list.Items, resp.StatusCode, nil
}
