package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"microblog/internal/config"

	"github.com/redis/go-redis/v9"
)

// User-facing results returned in place of a translation.
const (
	TranslationNotConfigured = "Error: the translation service is not configured."
	TranslationFailed        = "Error: the translation service failed."
)

const translationCacheTTL = 24 * time.Hour

type translateRequestItem struct {
	Text string `json:"Text"`
}

type translateResponseItem struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// TranslationService calls the Microsoft Translator v3 API. It never returns an error to callers:
// failures become one of the two user-facing messages above.
type TranslationService struct {
	key      string
	region   string
	endpoint string
	client   *http.Client
	rdb      *redis.Client
	logger   *slog.Logger
}

func NewTranslationService(cfg config.Config, rdb *redis.Client, logger *slog.Logger) *TranslationService {
	return &TranslationService{
		key:      cfg.TranslatorKey,
		region:   cfg.TranslatorRegion,
		endpoint: strings.TrimRight(cfg.TranslatorURL, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
		rdb:      rdb,
		logger:   logger,
	}
}

// Translate converts text from source to dest. An empty source lets the service detect it.
func (s *TranslationService) Translate(ctx context.Context, text, source, dest string) string {
	if s.key == "" {
		return TranslationNotConfigured
	}

	key := translationCacheKey(text, source, dest)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			return cached
		}
	}

	translated, err := s.call(ctx, text, source, dest)
	if err != nil {
		s.logger.Warn("Translation failed", "source", source, "dest", dest, "error", err)
		return TranslationFailed
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, key, translated, translationCacheTTL).Err(); err != nil {
			s.logger.Debug("Translation cache write failed", "error", err)
		}
	}
	return translated
}

func (s *TranslationService) call(ctx context.Context, text, source, dest string) (string, error) {
	params := url.Values{}
	params.Set("api-version", "3.0")
	if source != "" {
		params.Set("from", source)
	}
	params.Set("to", dest)

	payload, err := json.Marshal([]translateRequestItem{{Text: text}})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/translate?"+params.Encode(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", s.key)
	if s.region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", s.region)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	var items []translateResponseItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return "", fmt.Errorf("%w: decode translation: %v", ErrServiceUnavailable, err)
	}
	if len(items) == 0 || len(items[0].Translations) == 0 {
		return "", fmt.Errorf("%w: empty translation", ErrServiceUnavailable)
	}
	return items[0].Translations[0].Text, nil
}

func translationCacheKey(text, source, dest string) string {
	sum := sha256.Sum256([]byte(source + "\x00" + dest + "\x00" + text))
	return "translate:" + hex.EncodeToString(sum[:])
}
