package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/trip-planner-nosql/internal/domain"
	"go.uber.org/zap"
)

const maxLoggedBody = 4 << 10

// Client fetches user profiles from the users service with a single attempt.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// FetchUser calls GET {base}/user/{id}, forwarding bearer. A 404 or an empty
// body yields ErrNotFound; any other failure yields ErrUpstream.
func (c *Client) FetchUser(ctx context.Context, userID, bearer string) (*domain.User, error) {
	endpoint := c.baseURL + "/user/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("identity upstream unreachable", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: identity request: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read identity response: %v", domain.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("identity upstream rejected lookup",
			zap.String("user_id", userID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(body)))
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: identity status %d", domain.ErrUpstream, resp.StatusCode)
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		c.log.Warn("identity upstream returned empty body", zap.String("user_id", userID))
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	var u domain.User
	if err := json.Unmarshal(trimmed, &u); err != nil {
		c.log.Error("identity upstream returned invalid JSON",
			zap.String("user_id", userID), zap.ByteString("body", truncate(body)), zap.Error(err))
		return nil, fmt.Errorf("%w: decode identity response: %v", domain.ErrUpstream, err)
	}
	if u.UserID == "" {
		u.UserID = userID
	}
	return &u, nil
}

func truncate(b []byte) []byte {
	if len(b) > maxLoggedBody {
		return b[:maxLoggedBody]
	}
	return b
}
