package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shotlist/analytics-backend/internal/models"
)

func TestKPIsEmptyDatabase(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)

	kpis, err := c.Metrics.KPIs(ScopeFor(user), 30, 0)
	require.NoError(t, err)

	assert.Zero(t, kpis.Revenue.Value)
	assert.Zero(t, kpis.Revenue.Change)
	assert.Zero(t, kpis.ROI.Value)
	assert.Zero(t, kpis.ROI.Change)
	assert.Zero(t, kpis.Conversions.Value)
	assert.Zero(t, kpis.ROAS.Value)
}

// A window with data but an empty preceding window must report change
// 0, never a division artifact.
func TestKPIsZeroPreviousWindow(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	campaign := createCampaign(t, c, user, "Awareness Q3")

	addROI(t, c, campaign, 5, 2000, 1000, 20)
	addROI(t, c, campaign, 10, 3000, 1500, 30)

	kpis, err := c.Metrics.KPIs(ScopeFor(user), 30, 0)
	require.NoError(t, err)

	assert.Equal(t, 5000.0, kpis.Revenue.Value)
	assert.Equal(t, 0.0, kpis.Revenue.Change)
	assert.Equal(t, 50.0, kpis.Conversions.Value)
	assert.Equal(t, 0.0, kpis.Conversions.Change)
	assert.Equal(t, 100.0, kpis.ROI.Value)
	assert.Equal(t, 0.0, kpis.ROI.Change)
}

func TestKPIsWindowComparison(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	campaign := createCampaign(t, c, user, "Awareness Q3")

	// Current 30-day window.
	addROI(t, c, campaign, 5, 3000, 1000, 30)
	// Preceding window, days 30..60 back.
	addROI(t, c, campaign, 45, 1500, 1000, 10)

	kpis, err := c.Metrics.KPIs(ScopeFor(user), 30, 0)
	require.NoError(t, err)

	assert.Equal(t, 3000.0, kpis.Revenue.Value)
	assert.Equal(t, 100.0, kpis.Revenue.Change)
	assert.Equal(t, 30.0, kpis.Conversions.Value)
	assert.Equal(t, 200.0, kpis.Conversions.Change)
}

func TestKPIsTenantScoping(t *testing.T) {
	c := newTestContainer(t)
	alice := createUser(t, c, "techstartup", models.RoleClient)
	bob := createUser(t, c, "ecommerce", models.RoleClient)
	admin := createUser(t, c, "admin", models.RoleAdmin)

	aliceCampaign := createCampaign(t, c, alice, "Alice Campaign")
	bobCampaign := createCampaign(t, c, bob, "Bob Campaign")
	addROI(t, c, aliceCampaign, 5, 1000, 500, 10)
	addROI(t, c, bobCampaign, 5, 9000, 500, 90)

	aliceKPIs, err := c.Metrics.KPIs(ScopeFor(alice), 30, 0)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, aliceKPIs.Revenue.Value)

	adminKPIs, err := c.Metrics.KPIs(ScopeFor(admin), 30, 0)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, adminKPIs.Revenue.Value)
}

func TestKPIsCampaignFilter(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	first := createCampaign(t, c, user, "First")
	second := createCampaign(t, c, user, "Second")
	addROI(t, c, first, 5, 1000, 500, 10)
	addROI(t, c, second, 5, 2000, 500, 20)

	kpis, err := c.Metrics.KPIs(ScopeFor(user), 30, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, kpis.Revenue.Value)
}

func TestROITrendOrderingAndGaps(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	campaign := createCampaign(t, c, user, "Awareness Q3")

	// Inserted out of order, with a gap between the dates.
	addROI(t, c, campaign, 2, 2000, 1000, 20)
	addROI(t, c, campaign, 9, 1500, 1000, 15)

	trend, err := c.Metrics.ROITrend(ScopeFor(user), 30, 0)
	require.NoError(t, err)

	require.Len(t, trend.Labels, 2)
	require.Len(t, trend.Data, 2)
	assert.Less(t, trend.Labels[0], trend.Labels[1], "labels ascend by date")
	assert.Equal(t, 50.0, trend.Data[0])
	assert.Equal(t, 100.0, trend.Data[1])
}

func TestROITrendEmptyIsNotNil(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)

	trend, err := c.Metrics.ROITrend(ScopeFor(user), 30, 0)
	require.NoError(t, err)
	assert.NotNil(t, trend.Labels)
	assert.NotNil(t, trend.Data)
	assert.Empty(t, trend.Labels)
}

func TestRevenueCostSeries(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	campaign := createCampaign(t, c, user, "Awareness Q3")
	addROI(t, c, campaign, 3, 2000, 800, 20)

	series, err := c.Metrics.RevenueCost(ScopeFor(user), 30, 0)
	require.NoError(t, err)
	require.Len(t, series.Labels, 1)
	assert.Equal(t, 2000.0, series.Revenue[0])
	assert.Equal(t, 800.0, series.Cost[0])
}

func TestSocialSummaryTrackingMask(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	campaign := createCampaign(t, c, user, "Awareness Q3")

	now := timeNowDay()
	for _, platform := range []string{"instagram", "facebook", "twitter"} {
		require.NoError(t, c.DB.Create(&models.SocialMetric{
			CampaignID:      campaign.ID,
			Platform:        platform,
			Date:            now.AddDate(0, 0, -2),
			Impressions:     1000,
			Engagement:      100,
			Reach:           800,
			FollowersGained: 10,
			Clicks:          50,
		}).Error)
	}

	require.NoError(t, c.DB.Create(&models.TrackingConfig{
		Platform: "instagram", TrackImpressions: false,
	}).Error)
	require.NoError(t, c.DB.Create(&models.TrackingConfig{
		Platform: "facebook", TrackImpressions: true, TrackEngagement: false, TrackFollowers: true,
	}).Error)

	summary, err := c.Metrics.SocialSummary(ScopeFor(user), 30, 0)
	require.NoError(t, err)

	_, hasInstagram := summary["instagram"]
	assert.False(t, hasInstagram, "untracked platform is dropped entirely")

	facebook := summary["facebook"]
	assert.Equal(t, 1000, facebook.Impressions)
	assert.Zero(t, facebook.Engagement)
	assert.Zero(t, facebook.Clicks)
	assert.Equal(t, 10, facebook.Followers)

	// Unconfigured platforms report everything.
	twitter := summary["twitter"]
	assert.Equal(t, 100, twitter.Engagement)
}

func TestPercentChange(t *testing.T) {
	assert.Equal(t, 100.0, percentChange(200, 100))
	assert.Equal(t, -50.0, percentChange(50, 100))
	assert.Equal(t, 0.0, percentChange(100, 0))
	assert.Equal(t, 0.0, percentChange(100, -5))
	assert.Equal(t, 0.0, percentChange(0, 0))
}

// The aggregate selects reference roi_metrics columns by name; the
// migrated schema must carry those exact names.
func TestROIMetricColumnNames(t *testing.T) {
	c := newTestContainer(t)
	migrator := c.DB.Migrator()

	assert.True(t, migrator.HasColumn(&models.ROIMetric{}, "roi_percentage"))
	assert.True(t, migrator.HasColumn(&models.ROIMetric{}, "roas"))
}
