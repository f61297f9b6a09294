package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// ReportService computes read-only project metrics.
type ReportService struct {
	projectRepo repository.ProjectRepository
	sprintRepo  repository.SprintRepository
	issueRepo   repository.IssueRepository
}

// NewReportService creates a ReportService.
func NewReportService(projectRepo repository.ProjectRepository, sprintRepo repository.SprintRepository, issueRepo repository.IssueRepository) *ReportService {
	if projectRepo == nil {
		panic("ProjectRepository cannot be nil for ReportService")
	}
	if sprintRepo == nil {
		panic("SprintRepository cannot be nil for ReportService")
	}
	if issueRepo == nil {
		panic("IssueRepository cannot be nil for ReportService")
	}
	return &ReportService{projectRepo: projectRepo, sprintRepo: sprintRepo, issueRepo: issueRepo}
}

// Dashboard aggregates a project's issue counts by status, type and priority.
type Dashboard struct {
	TotalIssues int            `json:"totalIssues"`
	ByStatus    map[string]int `json:"byStatus"`
	ByType      map[string]int `json:"byType"`
	ByPriority  map[string]int `json:"byPriority"`
	Overdue     int            `json:"overdue"`
}

// ProjectDashboard computes the dashboard for one project.
func (s *ReportService) ProjectDashboard(ctx context.Context, projectUID string) (*Dashboard, error) {
	project, err := s.projectRepo.FindByUID(ctx, projectUID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		logrus.WithError(err).Error("Failed to find project for dashboard")
		return nil, ErrInternalServer
	}

	issues, err := s.issueRepo.List(ctx, repository.IssueFilter{
		ProjectID:       &project.ID,
		IncludeSubtasks: true,
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to list issues for dashboard")
		return nil, ErrInternalServer
	}

	dashboard := &Dashboard{
		TotalIssues: len(issues),
		ByStatus:    map[string]int{},
		ByType:      map[string]int{},
		ByPriority:  map[string]int{},
	}
	now := time.Now()
	for i := range issues {
		issue := &issues[i]
		dashboard.ByStatus[issue.Status]++
		dashboard.ByType[issue.IssueType]++
		dashboard.ByPriority[issue.Priority]++
		if issue.DueDate != nil && issue.DueDate.Before(now) && issue.Status != domain.IssueStatusDone {
			dashboard.Overdue++
		}
	}
	return dashboard, nil
}

// BurndownPoint is the remaining work on one day of a sprint.
type BurndownPoint struct {
	Date      string  `json:"date"`
	Remaining int     `json:"remaining"`
	Ideal     float64 `json:"ideal"`
}

// SprintBurndown computes a day-by-day remaining-issue series for a sprint
// against the ideal straight line.
func (s *ReportService) SprintBurndown(ctx context.Context, sprintUID string) ([]BurndownPoint, error) {
	sprint, err := s.sprintRepo.FindByUID(ctx, sprintUID)
	if err != nil {
		if errors.Is(err, repository.ErrSprintNotFound) {
			return nil, ErrSprintNotFound
		}
		logrus.WithError(err).Error("Failed to find sprint for burndown")
		return nil, ErrInternalServer
	}

	issues, err := s.issueRepo.ListBySprintID(ctx, sprint.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to list sprint issues for burndown")
		return nil, ErrInternalServer
	}

	total := len(issues)
	remaining := 0
	for i := range issues {
		if issues[i].Status != domain.IssueStatusDone {
			remaining++
		}
	}

	days := int(sprint.EndDate.Sub(sprint.StartDate).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	points := make([]BurndownPoint, 0, days)
	for d := 0; d < days; d++ {
		date := sprint.StartDate.AddDate(0, 0, d)
		// Without a status-change journal the historical part of the series
		// is flat at the current remaining count.
		points = append(points, BurndownPoint{
			Date:      date.Format("2006-01-02"),
			Remaining: remaining,
			Ideal:     float64(total) * float64(days-1-d) / float64(max(days-1, 1)),
		})
	}
	return points, nil
}

// VelocityEntry is one completed sprint's throughput.
type VelocityEntry struct {
	SprintUID   string `json:"sprintId"`
	SprintName  string `json:"sprintName"`
	IssuesDone  int    `json:"issuesDone"`
	PointsDone  int    `json:"pointsDone"`
	IssuesTotal int    `json:"issuesTotal"`
}

// ProjectVelocity computes done-issue and story-point throughput per completed
// sprint of a project.
func (s *ReportService) ProjectVelocity(ctx context.Context, projectUID string) ([]VelocityEntry, error) {
	project, err := s.projectRepo.FindByUID(ctx, projectUID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		logrus.WithError(err).Error("Failed to find project for velocity")
		return nil, ErrInternalServer
	}

	sprints, err := s.sprintRepo.List(ctx, &project.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to list sprints for velocity")
		return nil, ErrInternalServer
	}

	entries := make([]VelocityEntry, 0, len(sprints))
	for i := range sprints {
		sprint := &sprints[i]
		if sprint.Status != domain.SprintStatusCompleted {
			continue
		}
		issues, err := s.issueRepo.ListBySprintID(ctx, sprint.ID)
		if err != nil {
			logrus.WithError(err).WithField("sprint_id", sprint.ID).Warn("Failed to list sprint issues for velocity")
			continue
		}
		entry := VelocityEntry{
			SprintUID:   sprint.UID,
			SprintName:  sprint.Name,
			IssuesTotal: len(issues),
		}
		for j := range issues {
			if issues[j].Status != domain.IssueStatusDone {
				continue
			}
			entry.IssuesDone++
			if issues[j].StoryPoints != nil {
				entry.PointsDone += *issues[j].StoryPoints
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
