package health

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const httpCheckTimeout = 2 * time.Second

// CheckHTTPServer creates a health check that GETs healthPath on address and expects a 2xx.
func CheckHTTPServer(address string, healthPath string) func(context.Context, bool) (int, string, error) {
	url := strings.TrimSuffix(address, "/") + "/" + strings.TrimPrefix(healthPath, "/")
	client := &http.Client{Timeout: httpCheckTimeout}

	return func(ctx context.Context, _ bool) (int, string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return http.StatusServiceUnavailable, fmt.Sprintf("HTTP server at %s: bad request", address), err
		}

		resp, err := client.Do(req)
		if err != nil {
			return http.StatusServiceUnavailable, fmt.Sprintf("HTTP server at %s not accepting connections", address), err
		}

		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return http.StatusOK, fmt.Sprintf("HTTP server at %s is listening and accepting requests", address), nil
		}

		return http.StatusServiceUnavailable, fmt.Sprintf("HTTP server at %s returned status %d", address, resp.StatusCode), nil
	}
}
