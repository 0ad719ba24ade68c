package tracking

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

const DefaultIndex = "founders-analytics"

// ESMirror indexes tracking records into Elasticsearch.
type ESMirror struct {
	client  *elasticsearch.Client
	index   string
	timeout time.Duration
}

func NewESMirror(client *elasticsearch.Client, index string) *ESMirror {
	if index == "" {
		index = DefaultIndex
	}
	return &ESMirror{client: client, index: index, timeout: 3 * time.Second}
}

func (m *ESMirror) Index(ctx context.Context, doc []byte) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	res, err := m.client.Index(
		m.index,
		bytes.NewReader(doc),
		m.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index track event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index track event: %s", res.Status())
	}
	return nil
}
