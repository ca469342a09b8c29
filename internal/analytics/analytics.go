// Package analytics aggregates per-user portfolio metrics from the store.
package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Mayconxzdev/automation-advisor/internal/model"
	"github.com/Mayconxzdev/automation-advisor/internal/store"
)

// UserAnalytics is the dashboard summary for one user.
type UserAnalytics struct {
	TotalRecommendations int                         `json:"total_recommendations"`
	TotalProjects        int                         `json:"total_projects"`
	ProjectsByStatus     map[model.ProjectStatus]int `json:"projects_by_status"`
	AverageROI           float64                     `json:"avg_roi_percentage"`
	TotalMonthlySavings  float64                     `json:"total_monthly_savings"`
}

// ROIAnalytics summarizes the financial side of a user's projects.
type ROIAnalytics struct {
	AverageROI          float64 `json:"avg_roi_percentage"`
	TotalMonthlySavings float64 `json:"total_monthly_savings"`
	AnnualSavings       float64 `json:"projected_annual_savings"`
	ProjectCount        int     `json:"project_count"`
}

// Service computes analytics over the store.
type Service struct {
	store store.Store
}

// NewService creates an analytics Service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// ForUser gathers the dashboard aggregates. The independent queries run
// concurrently and the first error cancels the rest.
func (s *Service) ForUser(ctx context.Context, userID int64) (*UserAnalytics, error) {
	out := &UserAnalytics{ProjectsByStatus: make(map[model.ProjectStatus]int)}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.CountRecommendations(ctx, userID)
		out.TotalRecommendations = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountProjects(ctx, userID)
		out.TotalProjects = n
		return err
	})
	g.Go(func() error {
		counts, err := s.store.ProjectsByStatus(ctx, userID)
		if err != nil {
			return err
		}
		for _, sc := range counts {
			out.ProjectsByStatus[sc.Status] = sc.Count
		}
		return nil
	})
	g.Go(func() error {
		avg, err := s.store.AverageROI(ctx, userID)
		out.AverageROI = avg
		return err
	})
	g.Go(func() error {
		total, err := s.store.TotalMonthlySavings(ctx, userID)
		out.TotalMonthlySavings = total
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ROIForUser computes the financial summary.
func (s *Service) ROIForUser(ctx context.Context, userID int64) (*ROIAnalytics, error) {
	out := &ROIAnalytics{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		avg, err := s.store.AverageROI(ctx, userID)
		out.AverageROI = avg
		return err
	})
	g.Go(func() error {
		total, err := s.store.TotalMonthlySavings(ctx, userID)
		out.TotalMonthlySavings = total
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountProjects(ctx, userID)
		out.ProjectCount = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.AnnualSavings = out.TotalMonthlySavings * 12
	return out, nil
}
