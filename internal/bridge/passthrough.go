package bridge

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyPassthrough fetches external targets over the real network. Enabled
// only when the deployment opts in; the base engine runs fully virtual.
type RestyPassthrough struct {
	client *resty.Client
}

// NewRestyPassthrough creates a passthrough client with modest retry and
// timeout settings.
func NewRestyPassthrough() *RestyPassthrough {
	return &RestyPassthrough{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(500 * time.Millisecond),
	}
}

// Fetch performs the request asynchronously and settles cont with whatever
// the network returned. The continuation may run on another goroutine;
// callers wrap it if they need serialization.
func (p *RestyPassthrough) Fetch(target string, cont Continuation) {
	go func() {
		resp, err := p.client.R().Get(target)
		if err != nil {
			cont(nil, err)
			return
		}
		headers := make(map[string]string, len(resp.Header()))
		for k := range resp.Header() {
			headers[k] = resp.Header().Get(k)
		}
		cont(&Response{
			Status:  resp.StatusCode(),
			Headers: headers,
			Body:    resp.String(),
		}, nil)
	}()
}
