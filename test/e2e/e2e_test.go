//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type cfg struct {
	APIBase    string // http://localhost:8080
	AdminToken string
	WaitReady  time.Duration
}

func loadCfg() cfg {
	return cfg{
		APIBase:    getenv("E2E_API_BASE", "http://localhost:8080"),
		AdminToken: getenv("E2E_ADMIN_TOKEN", "e2e-admin-token"),
		WaitReady:  mustParseDur(getenv("E2E_WAIT_READY", "30s")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustParseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return d
}

type envelope struct {
	Success bool            `json:"success"`
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type loginData struct {
	UserID       int64  `json:"userId"`
	Username     string `json:"username"`
	RoleID       int    `json:"roleId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func do(t *testing.T, method, url string, in any, headers map[string]string) (int, envelope) {
	t.Helper()
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), "%s %s: %s", method, url, string(raw))
	return resp.StatusCode, env
}

func waitHealthy(t *testing.T, c cfg) {
	t.Helper()
	deadline := time.Now().Add(c.WaitReady)
	for time.Now().Before(deadline) {
		resp, err := http.Get(c.APIBase + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(time.Second)
	}
	t.Fatalf("api-gateway not healthy after %s", c.WaitReady)
}

func Test_LoginRefreshLogout(t *testing.T) {
	c := loadCfg()
	waitHealthy(t, c)

	username := fmt.Sprintf("e2e_%d", time.Now().UnixNano())
	pass := "P@ssw0rd-e2e"

	code, env := do(t, http.MethodPost, c.APIBase+"/api/sysadmin/register", map[string]any{
		"firstName": "E2E",
		"lastName":  "Runner",
		"username":  username,
		"email":     username + "@crm.test",
		"password":  pass,
		"roleId":    3,
	}, map[string]string{"X-Admin-Token": c.AdminToken})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = do(t, http.MethodPost, c.APIBase+"/api/auth/login",
		map[string]string{"username": username, "password": "wrong"}, nil)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Invalid username or password", env.Message)

	code, env = do(t, http.MethodPost, c.APIBase+"/api/auth/login",
		map[string]string{"username": username, "password": pass}, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var sess loginData
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	require.Equal(t, username, sess.Username)
	require.NotEmpty(t, sess.AccessToken)
	require.NotEmpty(t, sess.RefreshToken)

	code, env = do(t, http.MethodPost, c.APIBase+"/api/auth/refresh-token", nil, map[string]string{
		"Authorization":   "Bearer " + sess.AccessToken,
		"X-Refresh-Token": sess.RefreshToken,
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	require.Equal(t, "Access token refreshed successfully", env.Message)

	code, _ = do(t, http.MethodGet, c.APIBase+"/api/traders", nil, map[string]string{
		"Authorization": "Bearer " + sess.AccessToken,
	})
	require.Equal(t, http.StatusOK, code)

	code, _ = do(t, http.MethodPost, c.APIBase+"/api/auth/logout", nil, map[string]string{
		"Authorization": "Bearer " + sess.AccessToken,
	})
	require.Equal(t, http.StatusOK, code)

	code, env = do(t, http.MethodPost, c.APIBase+"/api/auth/refresh-token", nil, map[string]string{
		"Authorization":   "Bearer " + sess.AccessToken,
		"X-Refresh-Token": sess.RefreshToken,
	})
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "Invalid refresh token provided", env.Message)
}
