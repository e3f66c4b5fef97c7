package services

import (
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/shotlist/analytics-backend/internal/models"
)

// Scope restricts aggregation to the caller's campaigns. Admins see
// every campaign; clients only their own. The restriction is applied
// as a SQL predicate, never as an in-memory filter.
type Scope struct {
	UserID uint
	Admin  bool
}

func ScopeFor(user *models.User) Scope {
	return Scope{UserID: user.ID, Admin: user.IsAdmin()}
}

// MetricsService computes the dashboard aggregates: windowed KPIs with
// period-over-period deltas, trend series and the SEO/social panels.
type MetricsService struct {
	container *Container
}

func NewMetricsService(c *Container) *MetricsService {
	return &MetricsService{container: c}
}

// KPIValue is a windowed aggregate plus its change against the
// immediately preceding window of equal length, in percent.
type KPIValue struct {
	Value  float64 `json:"value"`
	Change float64 `json:"change"`
}

type KPISet struct {
	ROI         KPIValue `json:"roi"`
	Revenue     KPIValue `json:"revenue"`
	Conversions KPIValue `json:"conversions"`
	ROAS        KPIValue `json:"roas"`
}

type roiAggregate struct {
	Revenue     float64
	Cost        float64
	Conversions float64
	ROI         float64
	ROAS        float64
}

// roiWindow aggregates roi_metrics over [from, to), scoped to the
// caller and optionally to a single campaign.
func (s *MetricsService) roiWindow(scope Scope, from, to time.Time, campaignID uint) (*roiAggregate, error) {
	agg := &roiAggregate{}
	query := s.container.DB.Model(&models.ROIMetric{}).
		Select(`COALESCE(SUM(roi_metrics.revenue), 0)       AS revenue,
			COALESCE(SUM(roi_metrics.cost), 0)          AS cost,
			COALESCE(SUM(roi_metrics.conversions), 0)   AS conversions,
			COALESCE(AVG(roi_metrics.roi_percentage), 0) AS roi,
			COALESCE(AVG(roi_metrics.roas), 0)          AS roas`).
		Joins("JOIN campaigns ON campaigns.id = roi_metrics.campaign_id").
		Where("roi_metrics.date >= ? AND roi_metrics.date < ?", from, to)

	query = applyScope(query, scope)
	if campaignID != 0 {
		query = query.Where("roi_metrics.campaign_id = ?", campaignID)
	}

	if err := query.Scan(agg).Error; err != nil {
		return nil, err
	}
	return agg, nil
}

// KPIs computes the four headline figures over a trailing window of
// windowDays, compared against the preceding window of equal length.
func (s *MetricsService) KPIs(scope Scope, windowDays int, campaignID uint) (*KPISet, error) {
	now := time.Now()
	windowStart := now.AddDate(0, 0, -windowDays)
	prevStart := now.AddDate(0, 0, -2*windowDays)

	current, err := s.roiWindow(scope, windowStart, now, campaignID)
	if err != nil {
		return nil, err
	}
	previous, err := s.roiWindow(scope, prevStart, windowStart, campaignID)
	if err != nil {
		return nil, err
	}

	return &KPISet{
		ROI:         KPIValue{Value: round2(current.ROI), Change: percentChange(current.ROI, previous.ROI)},
		Revenue:     KPIValue{Value: round2(current.Revenue), Change: percentChange(current.Revenue, previous.Revenue)},
		Conversions: KPIValue{Value: math.Trunc(current.Conversions), Change: percentChange(current.Conversions, previous.Conversions)},
		ROAS:        KPIValue{Value: round2(current.ROAS), Change: percentChange(current.ROAS, previous.ROAS)},
	}, nil
}

// TrendSeries is a date-keyed series in calendar order. Dates with no
// facts are simply absent; nothing is zero-filled.
type TrendSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

type datedRow struct {
	Date    time.Time
	Value   float64
	Revenue float64
	Cost    float64
}

// ROITrend returns the average ROI per calendar date, ascending.
func (s *MetricsService) ROITrend(scope Scope, windowDays int, campaignID uint) (*TrendSeries, error) {
	rows, err := s.datedRows(scope, windowDays, campaignID,
		"roi_metrics.date AS date, COALESCE(AVG(roi_metrics.roi_percentage), 0) AS value")
	if err != nil {
		return nil, err
	}

	trend := &TrendSeries{Labels: []string{}, Data: []float64{}}
	for _, row := range rows {
		trend.Labels = append(trend.Labels, row.Date.Format("2006-01-02"))
		trend.Data = append(trend.Data, round2(row.Value))
	}
	return trend, nil
}

// RevenueCostSeries backs the revenue-vs-cost chart.
type RevenueCostSeries struct {
	Labels  []string  `json:"labels"`
	Revenue []float64 `json:"revenue"`
	Cost    []float64 `json:"cost"`
}

func (s *MetricsService) RevenueCost(scope Scope, windowDays int, campaignID uint) (*RevenueCostSeries, error) {
	rows, err := s.datedRows(scope, windowDays, campaignID,
		"roi_metrics.date AS date, COALESCE(SUM(roi_metrics.revenue), 0) AS revenue, COALESCE(SUM(roi_metrics.cost), 0) AS cost")
	if err != nil {
		return nil, err
	}

	series := &RevenueCostSeries{Labels: []string{}, Revenue: []float64{}, Cost: []float64{}}
	for _, row := range rows {
		series.Labels = append(series.Labels, row.Date.Format("2006-01-02"))
		series.Revenue = append(series.Revenue, round2(row.Revenue))
		series.Cost = append(series.Cost, round2(row.Cost))
	}
	return series, nil
}

func (s *MetricsService) datedRows(scope Scope, windowDays int, campaignID uint, sel string) ([]datedRow, error) {
	windowStart := time.Now().AddDate(0, 0, -windowDays)

	query := s.container.DB.Model(&models.ROIMetric{}).
		Select(sel).
		Joins("JOIN campaigns ON campaigns.id = roi_metrics.campaign_id").
		Where("roi_metrics.date >= ?", windowStart).
		Group("roi_metrics.date").
		Order("roi_metrics.date ASC")

	query = applyScope(query, scope)
	if campaignID != 0 {
		query = query.Where("roi_metrics.campaign_id = ?", campaignID)
	}

	var rows []datedRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SEOValue carries the panel's mixed delta semantics: traffic changes
// in percent, keyword/backlink counts as absolute deltas, and domain
// authority is reported flat.
type SEOValue struct {
	Value  int     `json:"value"`
	Change float64 `json:"change"`
}

type SEOSummary struct {
	OrganicTraffic  SEOValue `json:"organic_traffic"`
	KeywordRankings SEOValue `json:"keyword_rankings"`
	Backlinks       SEOValue `json:"backlinks"`
	DomainAuthority SEOValue `json:"domain_authority"`
}

type seoAggregate struct {
	Traffic   float64
	Keywords  float64
	Backlinks float64
	Authority float64
}

func (s *MetricsService) seoWindow(from, to time.Time) (*seoAggregate, error) {
	agg := &seoAggregate{}
	err := s.container.DB.Model(&models.SEOMetric{}).
		Select(`COALESCE(SUM(organic_traffic), 0)   AS traffic,
			COALESCE(AVG(keyword_rankings), 0)  AS keywords,
			COALESCE(SUM(backlinks), 0)         AS backlinks,
			COALESCE(AVG(domain_authority), 0)  AS authority`).
		Where("date >= ? AND date < ?", from, to).
		Scan(agg).Error
	return agg, err
}

func (s *MetricsService) SEO(windowDays int) (*SEOSummary, error) {
	now := time.Now()
	windowStart := now.AddDate(0, 0, -windowDays)
	prevStart := now.AddDate(0, 0, -2*windowDays)

	current, err := s.seoWindow(windowStart, now)
	if err != nil {
		return nil, err
	}
	previous, err := s.seoWindow(prevStart, windowStart)
	if err != nil {
		return nil, err
	}

	return &SEOSummary{
		OrganicTraffic:  SEOValue{Value: int(current.Traffic), Change: percentChange(current.Traffic, previous.Traffic)},
		KeywordRankings: SEOValue{Value: int(current.Keywords), Change: math.Trunc(current.Keywords - previous.Keywords)},
		Backlinks:       SEOValue{Value: int(current.Backlinks), Change: math.Trunc(current.Backlinks - previous.Backlinks)},
		DomainAuthority: SEOValue{Value: int(current.Authority), Change: 0},
	}, nil
}

// PlatformSummary is one platform's social panel row.
type PlatformSummary struct {
	Impressions int `json:"impressions"`
	Engagement  int `json:"engagement"`
	Reach       int `json:"reach"`
	Followers   int `json:"followers"`
	Clicks      int `json:"clicks"`
}

type socialRow struct {
	Platform    string
	Impressions int
	Engagement  int
	Reach       int
	Followers   int
	Clicks      int
}

// SocialSummary aggregates the campaign-level social series per
// platform, masked by the per-platform tracking configuration.
func (s *MetricsService) SocialSummary(scope Scope, windowDays int, campaignID uint) (map[string]PlatformSummary, error) {
	var configs []models.TrackingConfig
	if err := s.container.DB.Find(&configs).Error; err != nil {
		return nil, err
	}
	tracking := make(map[string]models.TrackingConfig, len(configs))
	for _, cfg := range configs {
		tracking[cfg.Platform] = cfg
	}

	windowStart := time.Now().AddDate(0, 0, -windowDays)
	query := s.container.DB.Model(&models.SocialMetric{}).
		Select(`social_metrics.platform                            AS platform,
			COALESCE(SUM(social_metrics.impressions), 0)      AS impressions,
			COALESCE(SUM(social_metrics.engagement), 0)       AS engagement,
			COALESCE(SUM(social_metrics.reach), 0)            AS reach,
			COALESCE(SUM(social_metrics.followers_gained), 0) AS followers,
			COALESCE(SUM(social_metrics.clicks), 0)           AS clicks`).
		Joins("JOIN campaigns ON campaigns.id = social_metrics.campaign_id").
		Where("social_metrics.date >= ?", windowStart).
		Group("social_metrics.platform")

	query = applyScope(query, scope)
	if campaignID != 0 {
		query = query.Where("social_metrics.campaign_id = ?", campaignID)
	}

	var rows []socialRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	platforms := make(map[string]PlatformSummary)
	for _, row := range rows {
		cfg, configured := tracking[row.Platform]
		if configured && !cfg.TrackImpressions {
			continue
		}

		summary := PlatformSummary{
			Impressions: row.Impressions,
			Engagement:  row.Engagement,
			Reach:       row.Reach,
			Followers:   row.Followers,
			Clicks:      row.Clicks,
		}
		if configured {
			if !cfg.TrackEngagement {
				summary.Engagement = 0
				summary.Clicks = 0
			}
			if !cfg.TrackFollowers {
				summary.Followers = 0
			}
		}
		platforms[row.Platform] = summary
	}
	return platforms, nil
}

func applyScope(query *gorm.DB, scope Scope) *gorm.DB {
	if scope.Admin {
		return query
	}
	return query.Where("campaigns.user_id = ?", scope.UserID)
}

// percentChange reports 0 when the previous period is zero or absent:
// there is no meaningful percentage, so the KPI shows flat rather than
// an error or infinity.
func percentChange(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return round2((current - previous) / previous * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
