package handlers

import (
	"bytes"
	"database/sql/driver"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyroute/internal/database"
	"skyroute/internal/middleware"
	"skyroute/pkg/jwt"
)

func userColumns() []string {
	return []string{
		"id", "email", "password_hash", "name", "role", "preferences",
		"subscription", "subscription_expiry", "api_key", "last_login",
		"created_at", "updated_at",
	}
}

func userRow(id uuid.UUID) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, "ada@example.com", "$2a$10$hash", "Ada", "user",
		[]byte(`{"theme":"light","voice_guidance":true,"offline_mode":false}`),
		"free", nil, nil, nil, now, now,
	}
}

func TestUpdatePreferencesEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	users := database.NewUserRepository(&database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")})
	handler := NewAuthHandler(users, jwt.NewService("test-secret", time.Hour), logger, 10)

	userID := uuid.New()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{UserID: userID})
	})
	router.PUT("/api/auth/preferences", handler.UpdatePreferences)

	t.Run("Partial Update Keeps Other Fields", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM users WHERE id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(userColumns()).AddRow(userRow(userID)...))
		mock.ExpectExec(`UPDATE users SET preferences`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		body := `{"theme": "dark"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/auth/preferences", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"theme":"dark"`)
		assert.Contains(t, w.Body.String(), `"voice_guidance":true`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown User", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM users WHERE id`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(userColumns()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/auth/preferences", bytes.NewBufferString(`{"theme":"dark"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
