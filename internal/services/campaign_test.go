package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shotlist/analytics-backend/internal/models"
)

func TestCampaignListComputesROI(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	campaign := createCampaign(t, c, user, "Awareness Q3")
	addROI(t, c, campaign, 5, 3000, 1000, 30)
	addROI(t, c, campaign, 6, 1000, 1000, 10)

	views, err := c.Campaign.List(ScopeFor(user), "", "")
	require.NoError(t, err)
	require.Len(t, views, 1)

	view := views[0]
	assert.Equal(t, "Awareness Q3", view.CampaignName)
	assert.Equal(t, 2000.0, view.Spent)
	assert.Equal(t, 4000.0, view.Revenue)
	assert.Equal(t, 100.0, view.ROI)
}

func TestCampaignListZeroSpend(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	createCampaign(t, c, user, "No Spend Yet")

	views, err := c.Campaign.List(ScopeFor(user), "", "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Zero(t, views[0].Spent)
	assert.Zero(t, views[0].ROI)
}

func TestCampaignListFilters(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)

	active := createCampaign(t, c, user, "Active Digital")
	paused := createCampaign(t, c, user, "Paused Social")
	require.NoError(t, c.DB.Model(paused).Updates(map[string]interface{}{
		"campaign_type": "social", "status": "paused",
	}).Error)

	views, err := c.Campaign.List(ScopeFor(user), "digital", "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, active.CampaignName, views[0].CampaignName)

	views, err = c.Campaign.List(ScopeFor(user), "all", "paused")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Paused Social", views[0].CampaignName)

	views, err = c.Campaign.List(ScopeFor(user), "all", "all")
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestCampaignListTenantScoping(t *testing.T) {
	c := newTestContainer(t)
	alice := createUser(t, c, "techstartup", models.RoleClient)
	bob := createUser(t, c, "ecommerce", models.RoleClient)
	admin := createUser(t, c, "admin", models.RoleAdmin)
	createCampaign(t, c, alice, "Alice Campaign")
	createCampaign(t, c, bob, "Bob Campaign")

	views, err := c.Campaign.List(ScopeFor(alice), "", "")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Alice Campaign", views[0].CampaignName)

	views, err = c.Campaign.List(ScopeFor(admin), "", "")
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestExportRows(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	campaign := createCampaign(t, c, user, "Awareness Q3")
	addROI(t, c, campaign, 5, 2000, 1000, 20)

	rows, err := c.Campaign.ExportRows(ScopeFor(user))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.Len(t, row, len(ExportHeader))
	assert.Equal(t, "Awareness Q3", row[0])
	assert.Equal(t, "2000", row[6])
	assert.Equal(t, "1000", row[7])
	assert.Equal(t, "20", row[8])
	assert.Equal(t, "100", row[9])
}

// Campaigns without metric rows still export, with zeroed numeric
// columns from the left join.
func TestExportRowsLeftJoin(t *testing.T) {
	c := newTestContainer(t)
	user := createUser(t, c, "techstartup", models.RoleClient)
	createCampaign(t, c, user, "Fresh Campaign")

	rows, err := c.Campaign.ExportRows(ScopeFor(user))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "0", rows[0][6])
	assert.Equal(t, "0", rows[0][8])
}
