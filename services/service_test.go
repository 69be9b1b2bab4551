package services

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"chat-app/config"
	"chat-app/models"
)

// setupTestDB points config.DB at a fresh in-memory database named
// after the test, so tests stay isolated from each other.
func setupTestDB(t *testing.T) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	openTestDB(t, dsn)
}

// setupFileTestDB backs the database with a file and makes every
// transaction take the write lock at BEGIN, so concurrent transactions
// queue instead of failing with a busy error. Used by tests that drive
// SendMessage from multiple goroutines.
func setupFileTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate&_journal_mode=WAL",
		filepath.Join(t.TempDir(), "chat.db"))
	openTestDB(t, dsn)
}

func openTestDB(t *testing.T, dsn string) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	config.DB = db
	config.App.JWTSecret = "test-secret"
}

func createUser(t *testing.T, username string) models.User {
	t.Helper()

	user := models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, config.DB.Create(&user).Error)
	return user
}

func participantIDs(t *testing.T, conversationID uint) []uint {
	t.Helper()

	var participants []models.ConversationParticipant
	require.NoError(t, config.DB.Where("conversation_id = ?", conversationID).Find(&participants).Error)
	ids := make([]uint, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	return ids
}
