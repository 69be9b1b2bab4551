package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chat-app/config"
	"chat-app/controllers"
	"chat-app/models"
	"chat-app/routes"
	"chat-app/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   *gin.Engine
	presence *services.Presence
	hub      *services.Hub
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	config.DB = db
	config.App.JWTSecret = "test-secret"

	presence := services.NewPresence()
	hub := services.NewHub(presence)
	router := routes.RegisterRoutes(&controllers.WS{Presence: presence, Hub: hub})
	return &testEnv{router: router, presence: presence, hub: hub}
}

// registerUser creates a user directly and returns it with a valid
// bearer token.
func registerUser(t *testing.T, username string) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Username: username, PasswordHash: string(hash)}
	require.NoError(t, config.DB.Create(&user).Error)

	token, err := services.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body.Data
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func conversationID(t *testing.T, w *httptest.ResponseRecorder) uint {
	t.Helper()

	data := decodeData(t, w)
	id, ok := data["conversation_id"].(float64)
	require.True(t, ok, "body: %s", w.Body.String())
	return uint(id)
}
