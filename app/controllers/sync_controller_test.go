package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/promocraft/catalog/app/models"
	"github.com/promocraft/catalog/app/repository"
)

func TestFailureSourceFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		syncType string
		want     string
	}{
		{syncType: models.SyncTypeZecat, want: models.FailedSourceZecat},
		{syncType: models.SyncTypeFamilies, want: models.FailedSourceZecat},
		{syncType: models.SyncTypeDataverse, want: models.FailedSourceDataverse},
		{syncType: models.SyncTypeManual, want: models.FailedSourceManual},
		{syncType: "unknown", want: models.FailedSourceManual},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, failureSourceFor(tt.syncType), tt.syncType)
	}
}

// The status and failures endpoints read through the global repositories;
// back them with a throwaway database and check the documents they serve.
func TestSyncEndpointsServeDatabaseState(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:sync_controller?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SyncMetadata{}, &models.FailedSync{}))
	repository.InitializeFactory(db)

	now := time.Now()
	require.NoError(t, db.Create(&models.SyncMetadata{
		Type:              models.SyncTypeZecat,
		Status:            models.SyncStatusPartial,
		LastAttemptedSync: &now,
		StatsTotal:        10,
		StatsFailed:       2,
	}).Error)
	require.NoError(t, db.Create(&models.FailedSync{
		SyncType:     models.FailedSourceZecat,
		EntityType:   models.FailedEntityProduct,
		EntityID:     "31",
		ErrorMessage: "HTTP 500",
		LastAttempt:  now,
	}).Error)

	app := fiber.New()
	app.Get("/status", HandleSyncStatus)
	app.Get("/failures", HandleSyncFailures)

	resp, err := app.Test(httptest.NewRequest("GET", "/status", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var status struct {
		Syncs []struct {
			Type               string `json:"type"`
			Status             string `json:"status"`
			StatsTotal         int    `json:"stats_total"`
			UnresolvedFailures int64  `json:"unresolved_failures"`
		} `json:"syncs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	require.Len(t, status.Syncs, 1)
	assert.Equal(t, models.SyncTypeZecat, status.Syncs[0].Type)
	assert.Equal(t, models.SyncStatusPartial, status.Syncs[0].Status)
	assert.Equal(t, 10, status.Syncs[0].StatsTotal)
	assert.EqualValues(t, 1, status.Syncs[0].UnresolvedFailures)

	resp, err = app.Test(httptest.NewRequest("GET", "/failures?type=zecat", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var failures struct {
		Type     string              `json:"type"`
		Total    int64               `json:"total"`
		Failures []models.FailedSync `json:"failures"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&failures))
	resp.Body.Close()
	assert.Equal(t, models.FailedSourceZecat, failures.Type)
	assert.EqualValues(t, 1, failures.Total)
	require.Len(t, failures.Failures, 1)
	assert.Equal(t, "31", failures.Failures[0].EntityID)
}

func TestHandleSyncFailuresRejectsBadLimit(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/failures", HandleSyncFailures)

	for _, limit := range []string{"0", "-1", "abc"} {
		req := httptest.NewRequest("GET", "/failures?limit="+limit, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "limit %q", limit)
	}
}

func TestHandleResolveFailureRejectsBadID(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Post("/failures/:id/resolve", HandleResolveFailure)

	for _, id := range []string{"0", "-3", "abc"} {
		req := httptest.NewRequest("POST", "/failures/"+id+"/resolve", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "id %q", id)
	}
}
