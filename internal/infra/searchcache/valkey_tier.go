package searchcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/findmy/internal/domain/recommendation"
)

// ValkeyTier shares search results between processes through Valkey.
type ValkeyTier struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyTier constructs a tier storing entries under prefix for ttl.
func NewValkeyTier(client valkey.Client, prefix string, ttl time.Duration) *ValkeyTier {
	if prefix == "" {
		prefix = "findmy:places"
	}
	return &ValkeyTier{client: client, prefix: prefix, ttl: ttl}
}

func (t *ValkeyTier) Get(ctx context.Context, query string) ([]recommendation.RawPlace, bool, error) {
	payload, err := t.client.Do(ctx, t.client.B().Get().Key(t.key(query)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var places []recommendation.RawPlace
	if err := json.Unmarshal([]byte(payload), &places); err != nil {
		return nil, false, err
	}
	return places, true, nil
}

func (t *ValkeyTier) Set(ctx context.Context, query string, places []recommendation.RawPlace) error {
	payload, err := json.Marshal(places)
	if err != nil {
		return err
	}
	builder := t.client.B().Set().Key(t.key(query)).Value(string(payload))
	var cmd valkey.Completed
	if t.ttl > 0 {
		ttl := t.ttl
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return t.client.Do(ctx, cmd).Error()
}

func (t *ValkeyTier) key(query string) string {
	return t.prefix + ":q:" + query
}

var _ SharedTier = (*ValkeyTier)(nil)
