package services

import (
	"strconv"

	"github.com/shotlist/analytics-backend/internal/models"
)

// CampaignService lists campaigns with their computed spend figures
// and produces the CSV export rows.
type CampaignService struct {
	container *Container
}

func NewCampaignService(c *Container) *CampaignService {
	return &CampaignService{container: c}
}

// CampaignView is a campaign plus its lifetime spend aggregates.
type CampaignView struct {
	CampaignID   uint    `json:"campaign_id"`
	CampaignName string  `json:"campaign_name"`
	ClientName   string  `json:"client_name"`
	CampaignType string  `json:"campaign_type"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	Budget       float64 `json:"budget"`
	Spent        float64 `json:"spent"`
	Revenue      float64 `json:"revenue"`
	ROI          float64 `json:"roi"`
	Status       string  `json:"status"`
}

type spendAggregate struct {
	Spent   float64
	Revenue float64
}

// List returns the caller's campaigns, optionally filtered by type and
// status ("" or "all" means no filter), newest first.
func (s *CampaignService) List(scope Scope, campaignType, status string) ([]CampaignView, error) {
	query := s.container.DB.Model(&models.Campaign{}).Order("created_at DESC")
	if !scope.Admin {
		query = query.Where("user_id = ?", scope.UserID)
	}
	if campaignType != "" && campaignType != "all" {
		query = query.Where("campaign_type = ?", campaignType)
	}
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var campaigns []models.Campaign
	if err := query.Find(&campaigns).Error; err != nil {
		return nil, err
	}

	views := make([]CampaignView, 0, len(campaigns))
	for _, campaign := range campaigns {
		agg := spendAggregate{}
		err := s.container.DB.Model(&models.ROIMetric{}).
			Select("COALESCE(SUM(cost), 0) AS spent, COALESCE(SUM(revenue), 0) AS revenue").
			Where("campaign_id = ?", campaign.ID).
			Scan(&agg).Error
		if err != nil {
			return nil, err
		}

		roi := 0.0
		if agg.Spent > 0 {
			roi = round2((agg.Revenue - agg.Spent) / agg.Spent * 100)
		}

		views = append(views, CampaignView{
			CampaignID:   campaign.ID,
			CampaignName: campaign.CampaignName,
			ClientName:   campaign.ClientName,
			CampaignType: campaign.CampaignType,
			StartDate:    campaign.StartDate.Format("2006-01-02"),
			EndDate:      campaign.EndDate.Format("2006-01-02"),
			Budget:       campaign.Budget,
			Spent:        round2(agg.Spent),
			Revenue:      round2(agg.Revenue),
			ROI:          roi,
			Status:       campaign.Status,
		})
	}
	return views, nil
}

// ExportHeader is the fixed CSV header of the export endpoint.
var ExportHeader = []string{"Campaign", "Client", "Type", "Budget", "Status", "Date", "Revenue", "Cost", "Conversions", "ROI"}

type exportRow struct {
	CampaignName  string
	ClientName    string
	CampaignType  string
	Budget        float64
	Status        string
	Date          *string
	Revenue       *float64
	Cost          *float64
	Conversions   *int
	ROIPercentage *float64 `gorm:"column:roi_percentage"`
}

// ExportRows flattens campaigns joined with their ROI facts into CSV
// records, one row per (campaign, date), campaigns without facts
// included once with empty fact columns.
func (s *CampaignService) ExportRows(scope Scope) ([][]string, error) {
	query := s.container.DB.Model(&models.Campaign{}).
		Select(`campaigns.campaign_name   AS campaign_name,
			campaigns.client_name     AS client_name,
			campaigns.campaign_type   AS campaign_type,
			campaigns.budget          AS budget,
			campaigns.status          AS status,
			roi_metrics.date          AS date,
			roi_metrics.revenue       AS revenue,
			roi_metrics.cost          AS cost,
			roi_metrics.conversions   AS conversions,
			roi_metrics.roi_percentage AS roi_percentage`).
		Joins("LEFT JOIN roi_metrics ON roi_metrics.campaign_id = campaigns.id").
		Order("campaigns.campaign_name ASC, roi_metrics.date ASC")
	if !scope.Admin {
		query = query.Where("campaigns.user_id = ?", scope.UserID)
	}

	var rows []exportRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.CampaignName,
			row.ClientName,
			row.CampaignType,
			strconv.FormatFloat(row.Budget, 'f', -1, 64),
			row.Status,
			derefString(row.Date),
			formatNullFloat(row.Revenue),
			formatNullFloat(row.Cost),
			formatNullInt(row.Conversions),
			formatNullFloat(row.ROIPercentage),
		})
	}
	return records, nil
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	if len(*v) >= 10 {
		return (*v)[:10]
	}
	return *v
}

func formatNullFloat(v *float64) string {
	if v == nil {
		return "0"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatNullInt(v *int) string {
	if v == nil {
		return "0"
	}
	return strconv.Itoa(*v)
}
