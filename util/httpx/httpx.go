package httpx

import (
	"net"
	"net/http"
	"time"
)

// Sized for webhook delivery: one short-lived POST per fulfilled
// reservation, so the pool stays small and the timeout tight.
var defaultClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   3 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     60 * time.Second,
	},
}

// Client returns the shared outbound client.
func Client() *http.Client { return defaultClient }
