package notifierrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"librarydesk/util/httpx"
)

type webhookRepo struct {
	url    string
	client *http.Client
}

// NewWebhook posts fulfillment events to url. An empty url disables delivery.
func NewWebhook(url string) Repo { return &webhookRepo{url: url, client: httpx.Client()} }

func (r *webhookRepo) ReservationFulfilled(ctx context.Context, ev Event) error {
	if r.url == "" {
		return nil
	}
	b, _ := json.Marshal(ev)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("reservation webhook failed: %s", resp.Status)
	}
	return nil
}
