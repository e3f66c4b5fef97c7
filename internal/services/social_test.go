package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shotlist/analytics-backend/internal/integrations/social"
	"github.com/shotlist/analytics-backend/internal/models"
)

func connectTestAccount(t *testing.T, c *Container, userID uint, platform, username string) *models.SocialAccount {
	t.Helper()
	account, err := c.Social.ConnectAccount(userID, &ConnectAccountRequest{
		Platform:     platform,
		Username:     username,
		AccountEmail: username + "@example.com",
		AccessToken:  "token-" + username,
	}, "127.0.0.1")
	require.NoError(t, err)
	return account
}

func TestConnectAccountDuplicateConflicts(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)

	connectTestAccount(t, c, user.ID, "instagram", "shotlist_official")

	_, err := c.Social.ConnectAccount(user.ID, &ConnectAccountRequest{
		Platform:     "Instagram",
		Username:     "shotlist_official",
		AccountEmail: "other@example.com",
		AccessToken:  "different-token",
	}, "127.0.0.1")
	assert.ErrorIs(t, err, ErrAccountExists)

	// Same username on another platform is fine.
	_, err = c.Social.ConnectAccount(user.ID, &ConnectAccountRequest{
		Platform:     "tiktok",
		Username:     "shotlist_official",
		AccountEmail: "other@example.com",
		AccessToken:  "different-token",
	}, "127.0.0.1")
	assert.NoError(t, err)
}

func TestConnectAccountWritesAudit(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	account := connectTestAccount(t, c, user.ID, "instagram", "shotlist_official")

	entries, err := c.Social.AuditLog(account.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "connected", entries[0].Action)
	assert.Equal(t, "success", entries[0].Status)
}

// Re-posting a snapshot for the same key must overwrite, leaving one
// row with the latest values.
func TestDailyMetricsUpsertOverwrites(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	account := connectTestAccount(t, c, user.ID, "instagram", "shotlist_official")

	date := time.Now().Format("2006-01-02")
	require.NoError(t, c.Social.AddDailyMetrics(&models.DailyMetric{
		AccountID: account.ID, Platform: "instagram", Date: date,
		Followers: 1000, Likes: 50,
	}))
	require.NoError(t, c.Social.AddDailyMetrics(&models.DailyMetric{
		AccountID: account.ID, Platform: "instagram", Date: date,
		Followers: 1100, Likes: 75,
	}))

	var rows []models.DailyMetric
	require.NoError(t, c.DB.Where("account_id = ?", account.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 1100, rows[0].Followers)
	assert.Equal(t, 75, rows[0].Likes)
}

func TestDisconnectRemovesAccounts(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	connectTestAccount(t, c, user.ID, "instagram", "first")
	connectTestAccount(t, c, user.ID, "instagram", "second")

	require.NoError(t, c.Social.Disconnect(user.ID, "instagram", "127.0.0.1"))

	accounts, err := c.Social.Accounts(user.ID)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	assert.ErrorIs(t, c.Social.Disconnect(user.ID, "instagram", "127.0.0.1"), ErrNotFound)
}

func TestSettingsDefaultsAndUpsert(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)

	settings, err := c.Social.Settings(user.ID)
	require.NoError(t, err)
	assert.True(t, settings.AnalyticsEnabled)
	assert.False(t, settings.AutoPost)

	settings.AutoPost = true
	require.NoError(t, c.Social.SaveSettings(user.ID, settings))
	settings.AutoPost = false
	require.NoError(t, c.Social.SaveSettings(user.ID, settings))

	var count int64
	c.DB.Model(&models.SocialSettings{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

type stubFetcher struct {
	platform string
	snapshot *social.Snapshot
	err      error
}

func (f *stubFetcher) Platform() string { return f.platform }

func (f *stubFetcher) FetchMetrics(ctx context.Context, accessToken string) (*social.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

func TestSyncAllPartialFailure(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	good := connectTestAccount(t, c, user.ID, "instagram", "works")
	connectTestAccount(t, c, user.ID, "twitter", "broken")

	c.Fetchers = social.FetcherRegistry{
		"instagram": &stubFetcher{platform: "instagram", snapshot: &social.Snapshot{Followers: 4200, Likes: 10}},
		"twitter":   &stubFetcher{platform: "twitter", err: errors.New("token expired")},
	}

	result, err := c.Social.SyncAll(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Synced)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "twitter")

	var metric models.DailyMetric
	require.NoError(t, c.DB.Where("account_id = ?", good.ID).First(&metric).Error)
	assert.Equal(t, 4200, metric.Followers)
	assert.Equal(t, time.Now().Format("2006-01-02"), metric.Date)
}

func TestSyncAllUnsupportedPlatform(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	connectTestAccount(t, c, user.ID, "myspace", "oldschool")

	result, err := c.Social.SyncAll(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Synced)
	assert.Equal(t, 1, result.Failed)
}

func TestPerformanceSummary(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	account := connectTestAccount(t, c, user.ID, "instagram", "shotlist_official")

	for i, followers := range []int{1000, 1050} {
		require.NoError(t, c.Social.AddDailyMetrics(&models.DailyMetric{
			AccountID:      account.ID,
			Platform:       "instagram",
			Date:           time.Now().AddDate(0, 0, -i).Format("2006-01-02"),
			Followers:      followers,
			EngagementRate: 4.0,
			Reach:          500,
			Likes:          20,
		}))
	}

	summary, err := c.Social.PerformanceSummary(account.ID, "instagram")
	require.NoError(t, err)
	assert.Equal(t, 1050, summary.Followers)
	assert.Equal(t, 4.0, summary.AvgEngagement)
	assert.Equal(t, 1000, summary.TotalReach)
	assert.Equal(t, 40, summary.TotalLikes)
}

func TestAdsConnectUpsertAndRedactedStatus(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)

	_, err := c.Ads.Connect(user.ID, &ConnectAdsRequest{
		Platform: "Meta",
		Credentials: map[string]interface{}{
			"app_id": "app-1", "app_secret": "super-secret", "account_id": "act-9",
		},
	})
	require.NoError(t, err)

	// Reconnecting replaces, not duplicates.
	_, err = c.Ads.Connect(user.ID, &ConnectAdsRequest{
		Platform:    "meta",
		Credentials: map[string]interface{}{"app_id": "app-2", "account_id": "act-9"},
	})
	require.NoError(t, err)

	statuses, err := c.Ads.Status(user.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "meta", statuses[0].Platform)
	assert.Equal(t, "app-2", statuses[0].AppID)
	assert.Equal(t, "act-9", statuses[0].AccountID)
}

func TestAdsDisconnect(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)

	_, err := c.Ads.Connect(user.ID, &ConnectAdsRequest{
		Platform:    "google",
		Credentials: map[string]interface{}{"account_id": "g-1"},
	})
	require.NoError(t, err)

	require.NoError(t, c.Ads.Disconnect(user.ID, "google"))
	assert.ErrorIs(t, c.Ads.Disconnect(user.ID, "google"), ErrNotFound)
}

// Disabled flags must round-trip; a saved false is false on read.
func TestSaveSettingsPersistsFalse(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)

	require.NoError(t, c.Social.SaveSettings(user.ID, &models.SocialSettings{
		AnalyticsEnabled:     true,
		NotificationsEnabled: false,
	}))

	got, err := c.Social.Settings(user.ID)
	require.NoError(t, err)
	assert.True(t, got.AnalyticsEnabled)
	assert.False(t, got.NotificationsEnabled)

	// Turning a previously-on flag off must stick.
	require.NoError(t, c.Social.SaveSettings(user.ID, &models.SocialSettings{AnalyticsEnabled: false}))
	got, err = c.Social.Settings(user.ID)
	require.NoError(t, err)
	assert.False(t, got.AnalyticsEnabled)
}

func TestSaveTrackingConfigPersistsFalse(t *testing.T) {
	c := newTestContainer(t)

	require.NoError(t, c.Social.SaveTrackingConfig([]models.TrackingConfig{
		{Platform: "Instagram", TrackImpressions: false, TrackEngagement: true, TrackFollowers: false},
	}))

	configs, err := c.Social.TrackingConfig()
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, "instagram", configs[0].Platform)
	assert.False(t, configs[0].TrackImpressions)
	assert.True(t, configs[0].TrackEngagement)
	assert.False(t, configs[0].TrackFollowers)
}
