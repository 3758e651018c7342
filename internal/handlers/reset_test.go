package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenFromMail(t *testing.T, body string) string {
	t.Helper()
	const marker = "/reset_password/"
	i := strings.Index(body, marker)
	require.GreaterOrEqual(t, i, 0, body)
	rest := body[i+len(marker):]
	return rest[:strings.IndexByte(rest, '\n')]
}

func TestPasswordReset(t *testing.T) {
	env := setupTestHandler(t)
	env.register(t, "susan")

	t.Run("Unknown email answers the same", func(t *testing.T) {
		w := env.do("POST", "/api/reset_password_request", map[string]string{"email": "ghost@example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), resetRequestMessage)
		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, env.mail.messages())
	})

	t.Run("Invalid email rejected", func(t *testing.T) {
		w := env.do("POST", "/api/reset_password_request", map[string]string{"email": "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	var token string
	t.Run("Known email gets a link", func(t *testing.T) {
		w := env.do("POST", "/api/reset_password_request", map[string]string{"email": "susan@example.com"})
		assert.Equal(t, http.StatusOK, w.Code)

		require.Eventually(t, func() bool { return len(env.mail.messages()) == 1 }, time.Second, 10*time.Millisecond)
		msg := env.mail.messages()[0]
		assert.Equal(t, []string{"susan@example.com"}, msg.To)
		assert.Contains(t, msg.TextBody, "Dear susan")
		token = tokenFromMail(t, msg.TextBody)
		assert.NotEmpty(t, token)
	})

	t.Run("Bad token rejected", func(t *testing.T) {
		w := env.do("POST", "/api/reset_password/not.a.token", map[string]string{"password": "newpassword"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Over-long password rejected", func(t *testing.T) {
		w := env.do("POST", "/api/reset_password/"+token, map[string]string{"password": strings.Repeat("A", 100)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Reset with valid token", func(t *testing.T) {
		w := env.do("POST", "/api/reset_password/"+token, map[string]string{"password": "newpassword"})
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do("POST", "/api/login", map[string]string{"username": "susan", "password": "password123"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		w = env.do("POST", "/api/login", map[string]string{"username": "susan", "password": "newpassword"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Requests are throttled per address", func(t *testing.T) {
		// One request already spent above
		for i := 0; i < 3; i++ {
			w := env.do("POST", "/api/reset_password_request", map[string]string{"email": "susan@example.com"})
			assert.Equal(t, http.StatusOK, w.Code)
		}
		require.Eventually(t, func() bool { return len(env.mail.messages()) == 3 }, time.Second, 10*time.Millisecond)
		time.Sleep(50 * time.Millisecond)
		assert.Len(t, env.mail.messages(), 3)
	})
}
