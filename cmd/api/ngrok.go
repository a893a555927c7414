package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const webhookPath = "/webhook/telegram"

// ngrokTunnelsResponse matches the /api/tunnels response from the ngrok local API.
type ngrokTunnelsResponse struct {
	Tunnels []ngrokTunnel `json:"tunnels"`
}

type ngrokTunnel struct {
	PublicURL string `json:"public_url"`
	Proto     string `json:"proto"`
}

// ngrokProbe polls the ngrok local API until a tunnel shows up.
type ngrokProbe struct {
	api      string
	attempts int
	interval time.Duration
	client   *http.Client
}

func newNgrokProbe(api string) ngrokProbe {
	return ngrokProbe{
		api:      strings.TrimRight(api, "/"),
		attempts: 10,
		interval: 3 * time.Second,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// resolveWebhookURL returns the configured URL, or the ngrok public URL plus the webhook path.
func resolveWebhookURL(ctx context.Context, configured string, probe ngrokProbe) (string, error) {
	if configured != "" {
		return configured, nil
	}
	public, err := probe.publicURL(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(public, "/") + webhookPath, nil
}

// publicURL returns the first HTTPS tunnel, or any tunnel when none is HTTPS.
func (p ngrokProbe) publicURL(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		url, err := p.once(ctx)
		if err == nil && url != "" {
			return url, nil
		}
		lastErr = err

		if attempt < p.attempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(p.interval):
			}
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("ngrok API not usable after %d attempts: %w", p.attempts, lastErr)
	}
	return "", fmt.Errorf("ngrok has no active tunnels after %d attempts", p.attempts)
}

func (p ngrokProbe) once(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.api+"/api/tunnels", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create ngrok API request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var tunnels ngrokTunnelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tunnels); err != nil {
		return "", fmt.Errorf("failed to decode ngrok API response: %w", err)
	}

	for _, t := range tunnels.Tunnels {
		if t.Proto == "https" {
			return t.PublicURL, nil
		}
	}
	if len(tunnels.Tunnels) > 0 {
		return tunnels.Tunnels[0].PublicURL, nil
	}
	return "", nil
}
