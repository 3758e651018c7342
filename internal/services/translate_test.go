package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"microblog/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslationService(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/translate", r.URL.Path)
		assert.Equal(t, "3.0", r.URL.Query().Get("api-version"))
		assert.Equal(t, "test-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		assert.Equal(t, "uksouth", r.Header.Get("Ocp-Apim-Subscription-Region"))

		if r.URL.Query().Get("to") == "xx" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var body []map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		translated := map[string]string{"Hi, how are you today?": "Hola, ¿cómo estás hoy?"}[body[0]["Text"]]

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"translations": []map[string]string{{"text": translated, "to": r.URL.Query().Get("to")}}},
		})
	}))
	defer server.Close()

	cfg := config.Config{
		TranslatorKey:    "test-key",
		TranslatorRegion: "uksouth",
		TranslatorURL:    server.URL + "/",
	}

	t.Run("Not configured", func(t *testing.T) {
		service := NewTranslationService(config.Config{TranslatorURL: server.URL}, nil, testLogger())
		assert.Equal(t, TranslationNotConfigured, service.Translate(context.Background(), "hi", "en", "es"))
		assert.Zero(t, calls.Load())
	})

	t.Run("Translate", func(t *testing.T) {
		service := NewTranslationService(cfg, nil, testLogger())
		got := service.Translate(context.Background(), "Hi, how are you today?", "en", "es")
		assert.Equal(t, "Hola, ¿cómo estás hoy?", got)
	})

	t.Run("Service error", func(t *testing.T) {
		service := NewTranslationService(cfg, nil, testLogger())
		assert.Equal(t, TranslationFailed, service.Translate(context.Background(), "hi", "en", "xx"))
	})

	t.Run("Unreachable service", func(t *testing.T) {
		broken := cfg
		broken.TranslatorURL = "http://127.0.0.1:1"
		service := NewTranslationService(broken, nil, testLogger())
		assert.Equal(t, TranslationFailed, service.Translate(context.Background(), "hi", "en", "es"))
	})

	t.Run("Unavailable cache is ignored", func(t *testing.T) {
		rdb := redis.NewClient(&redis.Options{Addr: "localhost:1", MaxRetries: -1})
		defer rdb.Close()
		service := NewTranslationService(cfg, rdb, testLogger())
		got := service.Translate(context.Background(), "Hi, how are you today?", "en", "es")
		assert.Equal(t, "Hola, ¿cómo estás hoy?", got)
	})
}

func TestTranslationService_BackendErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("to") {
		case "garbled":
			w.Write([]byte("<html>not json</html>"))
		case "empty":
			w.Write([]byte("[]"))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer server.Close()

	service := NewTranslationService(config.Config{TranslatorKey: "k", TranslatorURL: server.URL}, nil, testLogger())
	for _, dest := range []string{"garbled", "empty", "throttled"} {
		t.Run(dest, func(t *testing.T) {
			_, err := service.call(context.Background(), "hi", "en", dest)
			assert.ErrorIs(t, err, ErrServiceUnavailable)
			assert.Equal(t, TranslationFailed, service.Translate(context.Background(), "hi", "en", dest))
		})
	}
}

func TestTranslationCacheKey(t *testing.T) {
	a := translationCacheKey("hello", "en", "es")
	assert.Equal(t, a, translationCacheKey("hello", "en", "es"))
	assert.NotEqual(t, a, translationCacheKey("hello", "en", "fr"))
	assert.NotEqual(t, a, translationCacheKey("hello", "", "es"))
	assert.Contains(t, a, "translate:")
}
