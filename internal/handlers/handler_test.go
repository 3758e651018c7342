package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"microblog/internal/config"
	"microblog/internal/repository"
	"microblog/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []services.Message
}

func (r *recordingSender) Send(_ context.Context, msg services.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) messages() []services.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]services.Message(nil), r.sent...)
}

type testEnv struct {
	h    *Handler
	db   *gorm.DB
	r    *gin.Engine
	mail *recordingSender
}

func setupTestHandler(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Config{
		DatabaseURL:   "sqlite://file:" + uuid.NewString() + "?mode=memory&cache=shared",
		SecretKey:     "test-secret",
		SessionSecret: "test-secret-12345678901234567890123456789012",
		ResetTokenTTL: 600,
		PostsPerPage:  3,
		Languages:     "en,es",
		Admins:        "admin@example.com",
	}

	db, err := repository.InitDB(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repository.AutoMigrate(db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Use a dummy redis client (not connected) with no retries
	rdb := redis.NewClient(&redis.Options{
		Addr:       "localhost:1",
		MaxRetries: -1,
	})
	t.Cleanup(func() { rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	audit := services.NewAuditService(db, logger)
	go audit.Start(ctx)
	sender := &recordingSender{}
	mail := services.NewMailServiceWithSender(sender, logger)
	go mail.Start(ctx)

	h := NewHandler(
		cfg, logger, db, rdb,
		services.NewIdentityService(db, audit),
		services.NewFollowService(db, audit),
		services.NewPostService(db, audit),
		services.NewFeedService(db),
		services.NewTokenService(cfg.SecretKey, time.Duration(cfg.ResetTokenTTL)*time.Second),
		mail,
		services.NewTranslationService(cfg, rdb, logger),
		audit,
		services.NewResetThrottle(nil, 3, time.Hour, logger),
	)
	return &testEnv{h: h, db: db, r: setupTestRouter(h), mail: sender}
}

func setupTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return h.SetupRouter(nil)
}

// do sends a JSON request. headers come in key/value pairs.
func (e *testEnv) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reader = bytes.NewBuffer(jsonBody)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

// register creates an account through the API and returns its API key.
func (e *testEnv) register(t *testing.T, username string) string {
	t.Helper()
	w := e.do("POST", "/api/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.do("POST", "/api/login", map[string]string{"username": username, "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["api_key"]
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
