package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Probe performs a plain HTTP request against the websocket endpoint's
// host before dialing, so an unreachable server surfaces as a clear error
// instead of a dial timeout. Any HTTP response counts as reachable.
func Probe(ctx context.Context, wsURL string, timeout time.Duration) error {
	target, err := probeURL(wsURL)
	if err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := &fasthttp.Client{
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(target)

	deadline := time.Now().Add(timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("endpoint unreachable: %w", err)
	}
	return nil
}

func probeURL(wsURL string) (string, error) {
	s := strings.TrimSpace(wsURL)
	switch {
	case strings.HasPrefix(s, "wss://"):
		return "https://" + strings.TrimPrefix(s, "wss://"), nil
	case strings.HasPrefix(s, "ws://"):
		return "http://" + strings.TrimPrefix(s, "ws://"), nil
	default:
		return "", fmt.Errorf("unsupported websocket url: %s", s)
	}
}
