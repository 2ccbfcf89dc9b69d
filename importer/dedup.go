package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultBloomKey       = "dropbot:seen:links"
	defaultBloomCapacity  = 100000
	defaultBloomErrorRate = 0.001
	defaultBloomTTL       = 30 * 24 * time.Hour
)

// LinkFilter is a Redis-backed Bloom filter over normalized feed links.
// It keeps repeated imports of the same feed from creating duplicate
// bookmarks. False positives drop a genuinely new link, which for feed
// imports is an acceptable trade against re-saving hundreds of old ones.
type LinkFilter struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewLinkFilter wraps an existing Redis client. The filter is reserved
// with RedisBloom's BF.RESERVE on first use; if the module is missing,
// BF.ADD may still auto-create it depending on server settings, so a
// failed reserve is not fatal.
func NewLinkFilter(client *redis.Client) *LinkFilter {
	f := &LinkFilter{
		client: client,
		key:    defaultBloomKey,
		ttl:    defaultBloomTTL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.Exists(ctx, f.key).Result()
	if err == nil && exists == 0 {
		client.Do(ctx, "BF.RESERVE", f.key,
			fmt.Sprintf("%f", defaultBloomErrorRate), defaultBloomCapacity)
	}
	return f
}

// Seen reports whether the link was added before. Errors are surfaced so
// the importer can decide to import anyway.
func (f *LinkFilter) Seen(ctx context.Context, link string) (bool, error) {
	res, err := f.client.Do(ctx, "BF.EXISTS", f.key, hashLink(link)).Result()
	if err != nil {
		return false, err
	}
	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case string:
		return v == "1", nil
	default:
		return false, fmt.Errorf("unexpected BF.EXISTS response type %T", res)
	}
}

// Add records the link. The TTL slides: the filter stays alive for the
// full window after the most recent import.
func (f *LinkFilter) Add(ctx context.Context, link string) error {
	if err := f.client.Do(ctx, "BF.ADD", f.key, hashLink(link)).Err(); err != nil {
		return err
	}
	return f.client.Expire(ctx, f.key, f.ttl).Err()
}

// hashLink hashes the normalized link so filter entries are fixed-size
// and tracking-parameter noise cannot defeat the duplicate check.
func hashLink(link string) string {
	h := sha256.Sum256([]byte(NormalizeLink(link)))
	return hex.EncodeToString(h[:])
}

// NormalizeLink canonicalizes a URL for duplicate detection: lowercased
// scheme and host, fragment removed, and common tracking query
// parameters (utm_*, fbclid, gclid) stripped.
func NormalizeLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return strings.TrimRight(u.String(), "/")
}
