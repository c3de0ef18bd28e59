package llm

import (
	"context"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay is the first backoff after a rate-limited or overloaded
// response. Tests override it to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// statusOverloaded is Anthropic's non-standard "overloaded" status.
const statusOverloaded = 529

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == statusOverloaded
}

// doWithRetry sends the request built by newReq, retrying 429 and 529
// responses with exponential backoff. The request is rebuilt for every
// attempt so its body can be replayed. After maxRetries the last retryable
// response is returned for the caller to inspect.
func doWithRetry(ctx context.Context, client *http.Client, newReq func() (*http.Request, error), maxRetries int) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := newReq()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}

		if !retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
