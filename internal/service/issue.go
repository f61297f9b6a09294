package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"project-hub/internal/domain"
	"project-hub/internal/repository"
)

// IssueService handles issues, comments, links and the notifications their
// changes produce.
type IssueService struct {
	issueRepo   repository.IssueRepository
	projectRepo repository.ProjectRepository
	labelRepo   repository.LabelRepository
	sprintRepo  repository.SprintRepository
	epicRepo    repository.EpicRepository
	userRepo    repository.UserRepository
	notifier    Notifier
}

// NewIssueService creates an IssueService.
func NewIssueService(
	issueRepo repository.IssueRepository,
	projectRepo repository.ProjectRepository,
	labelRepo repository.LabelRepository,
	sprintRepo repository.SprintRepository,
	epicRepo repository.EpicRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
) *IssueService {
	if issueRepo == nil {
		panic("IssueRepository cannot be nil for IssueService")
	}
	if projectRepo == nil {
		panic("ProjectRepository cannot be nil for IssueService")
	}
	if labelRepo == nil {
		panic("LabelRepository cannot be nil for IssueService")
	}
	if sprintRepo == nil {
		panic("SprintRepository cannot be nil for IssueService")
	}
	if epicRepo == nil {
		panic("EpicRepository cannot be nil for IssueService")
	}
	if userRepo == nil {
		panic("UserRepository cannot be nil for IssueService")
	}
	if notifier == nil {
		panic("Notifier cannot be nil for IssueService")
	}
	return &IssueService{
		issueRepo:   issueRepo,
		projectRepo: projectRepo,
		labelRepo:   labelRepo,
		sprintRepo:  sprintRepo,
		epicRepo:    epicRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// ListFilter narrows an issue listing by uids instead of numeric IDs.
type ListFilter struct {
	ProjectUID      string
	SprintUID       string
	EpicUID         string
	AssigneeUID     string
	IssueType       string
	Status          string
	Search          string
	IncludeSubtasks bool
}

// List returns issues matching the filter.
func (s *IssueService) List(ctx context.Context, filter ListFilter) ([]domain.Issue, error) {
	repoFilter := repository.IssueFilter{
		IssueType:       filter.IssueType,
		Status:          filter.Status,
		Search:          strings.TrimSpace(filter.Search),
		IncludeSubtasks: filter.IncludeSubtasks,
	}

	if filter.ProjectUID != "" {
		project, err := s.projectRepo.FindByUID(ctx, filter.ProjectUID)
		if err != nil {
			if errors.Is(err, repository.ErrProjectNotFound) {
				return nil, ErrProjectNotFound
			}
			return nil, ErrInternalServer
		}
		repoFilter.ProjectID = &project.ID
	}
	if filter.SprintUID != "" {
		sprint, err := s.sprintRepo.FindByUID(ctx, filter.SprintUID)
		if err != nil {
			if errors.Is(err, repository.ErrSprintNotFound) {
				return nil, ErrSprintNotFound
			}
			return nil, ErrInternalServer
		}
		repoFilter.SprintID = &sprint.ID
	}
	if filter.EpicUID != "" {
		epic, err := s.epicRepo.FindByUID(ctx, filter.EpicUID)
		if err != nil {
			if errors.Is(err, repository.ErrEpicNotFound) {
				return nil, ErrEpicNotFound
			}
			return nil, ErrInternalServer
		}
		repoFilter.EpicID = &epic.ID
	}
	if filter.AssigneeUID != "" {
		assignee, err := s.userRepo.FindByUID(ctx, filter.AssigneeUID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, ErrInternalServer
		}
		repoFilter.AssigneeID = &assignee.ID
	}

	issues, err := s.issueRepo.List(ctx, repoFilter)
	if err != nil {
		logrus.WithError(err).Error("Failed to list issues")
		return nil, ErrInternalServer
	}
	return issues, nil
}

// Get loads an issue with its full detail graph.
func (s *IssueService) Get(ctx context.Context, uid string) (*domain.Issue, error) {
	issue, err := s.issueRepo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrIssueNotFound) {
			return nil, ErrIssueNotFound
		}
		logrus.WithError(err).Error("Failed to find issue")
		return nil, ErrInternalServer
	}
	return issue, nil
}

// CreateIssueInput carries the fields of an issue creation request.
type CreateIssueInput struct {
	ProjectUID     string
	Title          string
	Description    string
	IssueType      string
	Priority       string
	AssigneeUID    string
	SprintUID      string
	EpicUID        string
	ParentUID      string
	DueDate        *time.Time
	StoryPoints    *int
	EstimatedHours *float64
	LabelUIDs      []string
}

// Create creates an issue. The key is allocated as "<PROJKEY>-<n>" where n
// starts at 101. The reporter automatically watches the issue, and a new
// assignee is notified.
func (s *IssueService) Create(ctx context.Context, actor *domain.User, in CreateIssueInput) (*domain.Issue, error) {
	if actor == nil || actor.Role == domain.RoleViewer {
		return nil, ErrPermissionDenied
	}
	if in.Title == "" {
		return nil, ErrInvalidInput
	}
	project, err := s.projectRepo.FindByUID(ctx, in.ProjectUID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		logrus.WithError(err).Error("Failed to find project for issue")
		return nil, ErrInternalServer
	}

	count, err := s.issueRepo.CountByProjectID(ctx, project.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to count issues for key allocation")
		return nil, ErrInternalServer
	}

	issueType := in.IssueType
	if issueType == "" {
		issueType = domain.IssueTypeTask
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	issue := &domain.Issue{
		UID:            domain.NewIssueUID(),
		ProjectID:      project.ID,
		Key:            fmt.Sprintf("%s-%d", project.Key, count+101),
		Title:          in.Title,
		Description:    in.Description,
		IssueType:      issueType,
		Status:         domain.IssueStatusTodo,
		Priority:       priority,
		ReporterID:     actor.ID,
		DueDate:        in.DueDate,
		StoryPoints:    in.StoryPoints,
		EstimatedHours: in.EstimatedHours,
	}

	if in.AssigneeUID != "" {
		assignee, err := s.userRepo.FindByUID(ctx, in.AssigneeUID)
		if err != nil {
			return nil, ErrUserNotFound
		}
		issue.AssigneeID = &assignee.ID
	}
	if in.SprintUID != "" {
		sprint, err := s.sprintRepo.FindByUID(ctx, in.SprintUID)
		if err != nil {
			return nil, ErrSprintNotFound
		}
		issue.SprintID = &sprint.ID
	}
	if in.EpicUID != "" {
		epic, err := s.epicRepo.FindByUID(ctx, in.EpicUID)
		if err != nil {
			return nil, ErrEpicNotFound
		}
		issue.EpicID = &epic.ID
	}
	if in.ParentUID != "" {
		parent, err := s.issueRepo.FindByUID(ctx, in.ParentUID)
		if err != nil {
			return nil, ErrIssueNotFound
		}
		issue.ParentID = &parent.ID
	}

	if err := s.issueRepo.Save(ctx, issue); err != nil {
		logrus.WithError(err).Error("Failed to save issue")
		return nil, ErrInternalServer
	}

	if len(in.LabelUIDs) > 0 {
		labels, err := s.labelRepo.FindByUIDs(ctx, in.LabelUIDs)
		if err == nil {
			if err := s.issueRepo.SetLabels(ctx, issue, labels); err != nil {
				logrus.WithError(err).Warn("Failed to attach labels to new issue")
			}
		}
	}

	// The reporter watches their own issue from the start.
	if err := s.issueRepo.AddWatcher(ctx, issue, actor); err != nil {
		logrus.WithError(err).Warn("Failed to add reporter as watcher")
	}

	if issue.AssigneeID != nil && *issue.AssigneeID != actor.ID {
		_ = s.notifier.Dispatch(ctx, NotificationInput{
			RecipientIDs: []uint{*issue.AssigneeID},
			ActorID:      actor.ID,
			Type:         domain.NotificationTypeAssignment,
			Title:        "Issue assigned to you",
			Message:      fmt.Sprintf("%s assigned %s to you: %s", actor.FullName(), issue.Key, issue.Title),
			ActionURL:    "/issues/" + issue.UID,
			Metadata:     map[string]string{"issueUid": issue.UID, "issueKey": issue.Key},
		})
	}

	logrus.WithFields(logrus.Fields{"issue_id": issue.ID, "key": issue.Key}).Info("Issue created")
	return issue, nil
}

// UpdateIssueInput carries mutable issue fields; nil leaves a field as is.
// Pointer-to-pointer fields distinguish "unset the value" from "leave it".
type UpdateIssueInput struct {
	Title          *string
	Description    *string
	IssueType      *string
	Status         *string
	Priority       *string
	AssigneeUID    *string // empty string unassigns
	SprintUID      *string // empty string moves to backlog
	EpicUID        *string // empty string detaches
	DueDate        **time.Time
	StoryPoints    **int
	EstimatedHours **float64
	LabelUIDs      *[]string
}

// Update applies an issue change. Developers may only edit issues they report
// or are assigned to; status and assignment changes notify the affected users.
func (s *IssueService) Update(ctx context.Context, actor *domain.User, uid string, in UpdateIssueInput) (*domain.Issue, error) {
	issue, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !s.canEditIssue(actor, issue) {
		return nil, ErrPermissionDenied
	}

	prevStatus := issue.Status
	prevAssignee := issue.AssigneeID

	if in.Title != nil {
		if *in.Title == "" {
			return nil, ErrInvalidInput
		}
		issue.Title = *in.Title
	}
	if in.Description != nil {
		issue.Description = *in.Description
	}
	if in.IssueType != nil {
		issue.IssueType = *in.IssueType
	}
	if in.Status != nil {
		if !domain.IsValidIssueStatus(*in.Status) {
			return nil, ErrInvalidInput
		}
		issue.Status = *in.Status
	}
	if in.Priority != nil {
		issue.Priority = *in.Priority
	}
	if in.AssigneeUID != nil {
		if *in.AssigneeUID == "" {
			issue.AssigneeID = nil
		} else {
			assignee, err := s.userRepo.FindByUID(ctx, *in.AssigneeUID)
			if err != nil {
				return nil, ErrUserNotFound
			}
			issue.AssigneeID = &assignee.ID
		}
	}
	if in.SprintUID != nil {
		if *in.SprintUID == "" {
			issue.SprintID = nil
		} else {
			sprint, err := s.sprintRepo.FindByUID(ctx, *in.SprintUID)
			if err != nil {
				return nil, ErrSprintNotFound
			}
			issue.SprintID = &sprint.ID
		}
	}
	if in.EpicUID != nil {
		if *in.EpicUID == "" {
			issue.EpicID = nil
		} else {
			epic, err := s.epicRepo.FindByUID(ctx, *in.EpicUID)
			if err != nil {
				return nil, ErrEpicNotFound
			}
			issue.EpicID = &epic.ID
		}
	}
	if in.DueDate != nil {
		issue.DueDate = *in.DueDate
	}
	if in.StoryPoints != nil {
		issue.StoryPoints = *in.StoryPoints
	}
	if in.EstimatedHours != nil {
		issue.EstimatedHours = *in.EstimatedHours
	}

	if err := s.issueRepo.Save(ctx, issue); err != nil {
		logrus.WithError(err).WithField("issue_id", issue.ID).Error("Failed to save issue update")
		return nil, ErrInternalServer
	}

	if in.LabelUIDs != nil {
		labels, err := s.labelRepo.FindByUIDs(ctx, *in.LabelUIDs)
		if err == nil {
			if err := s.issueRepo.SetLabels(ctx, issue, labels); err != nil {
				logrus.WithError(err).Warn("Failed to replace issue labels")
			}
		}
	}

	s.notifyIssueChanges(ctx, actor, issue, prevStatus, prevAssignee)
	return s.Get(ctx, uid)
}

// Move sets an issue's workflow status directly. This is the board
// drag-and-drop operation; unlike Update it dispatches no notification.
func (s *IssueService) Move(ctx context.Context, actor *domain.User, uid, status string) (*domain.Issue, error) {
	if !domain.IsValidIssueStatus(status) {
		return nil, ErrInvalidInput
	}
	issue, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !s.canEditIssue(actor, issue) {
		return nil, ErrPermissionDenied
	}
	if issue.Status == status {
		return issue, nil
	}

	issue.Status = status
	if err := s.issueRepo.Save(ctx, issue); err != nil {
		logrus.WithError(err).WithField("issue_id", issue.ID).Error("Failed to move issue")
		return nil, ErrInternalServer
	}
	return issue, nil
}

func (s *IssueService) canEditIssue(actor *domain.User, issue *domain.Issue) bool {
	if actor == nil || actor.Role == domain.RoleViewer {
		return false
	}
	if actor.Role == domain.RoleAdmin || actor.Role == domain.RoleProjectManager {
		return true
	}
	// Developers edit what they report or work on.
	if issue.ReporterID == actor.ID {
		return true
	}
	return issue.AssigneeID != nil && *issue.AssigneeID == actor.ID
}

// notifyIssueChanges dispatches assignment and status-change notifications
// after an update.
func (s *IssueService) notifyIssueChanges(ctx context.Context, actor *domain.User, issue *domain.Issue, prevStatus string, prevAssignee *uint) {
	newAssignee := issue.AssigneeID
	assigneeChanged := (prevAssignee == nil) != (newAssignee == nil) ||
		(prevAssignee != nil && newAssignee != nil && *prevAssignee != *newAssignee)

	if assigneeChanged && newAssignee != nil {
		_ = s.notifier.Dispatch(ctx, NotificationInput{
			RecipientIDs: []uint{*newAssignee},
			ActorID:      actor.ID,
			Type:         domain.NotificationTypeAssignment,
			Title:        "Issue assigned to you",
			Message:      fmt.Sprintf("%s assigned %s to you: %s", actor.FullName(), issue.Key, issue.Title),
			ActionURL:    "/issues/" + issue.UID,
			Metadata:     map[string]string{"issueUid": issue.UID, "issueKey": issue.Key},
		})
	}

	if issue.Status != prevStatus {
		recipients := s.watcherIDs(ctx, issue)
		recipients = append(recipients, issue.ReporterID)
		if issue.AssigneeID != nil {
			recipients = append(recipients, *issue.AssigneeID)
		}
		_ = s.notifier.Dispatch(ctx, NotificationInput{
			RecipientIDs: recipients,
			ActorID:      actor.ID,
			Type:         domain.NotificationTypeStatus,
			Title:        "Issue status changed",
			Message:      fmt.Sprintf("%s moved %s from %s to %s", actor.FullName(), issue.Key, prevStatus, issue.Status),
			ActionURL:    "/issues/" + issue.UID,
			Metadata:     map[string]string{"issueUid": issue.UID, "issueKey": issue.Key, "status": issue.Status},
		})
	}
}

func (s *IssueService) watcherIDs(ctx context.Context, issue *domain.Issue) []uint {
	full, err := s.issueRepo.FindByUID(ctx, issue.UID)
	if err != nil {
		logrus.WithError(err).Warn("Failed to load watchers")
		return nil
	}
	ids := make([]uint, 0, len(full.Watchers))
	for _, w := range full.Watchers {
		ids = append(ids, w.ID)
	}
	return ids
}

// Delete removes an issue.
func (s *IssueService) Delete(ctx context.Context, actor *domain.User, uid string) error {
	issue, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	if !s.canEditIssue(actor, issue) {
		return ErrPermissionDenied
	}
	if err := s.issueRepo.Delete(ctx, issue.ID); err != nil {
		logrus.WithError(err).WithField("issue_id", issue.ID).Error("Failed to delete issue")
		return ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{"issue_id": issue.ID, "actor_id": actor.ID}).Info("Issue deleted")
	return nil
}

// AddComment creates a comment. Watchers, the reporter and the assignee are
// notified of the comment; mentioned project participants get a separate
// mention notification instead.
func (s *IssueService) AddComment(ctx context.Context, actor *domain.User, issueUID, content string) (*domain.IssueComment, error) {
	if actor == nil || actor.Role == domain.RoleViewer {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrInvalidInput
	}
	issue, err := s.Get(ctx, issueUID)
	if err != nil {
		return nil, err
	}

	comment := &domain.IssueComment{
		UID:      domain.NewCommentUID(),
		IssueID:  issue.ID,
		AuthorID: actor.ID,
		Content:  content,
	}
	if err := s.issueRepo.SaveComment(ctx, comment); err != nil {
		logrus.WithError(err).Error("Failed to save comment")
		return nil, ErrInternalServer
	}
	comment.Author = *actor

	mentioned := s.resolveMentionedParticipants(ctx, issue.ProjectID, content)
	if len(mentioned) > 0 {
		_ = s.notifier.Dispatch(ctx, NotificationInput{
			RecipientIDs: mentioned,
			ActorID:      actor.ID,
			Type:         domain.NotificationTypeMention,
			Title:        "You were mentioned",
			Message:      fmt.Sprintf("%s mentioned you on %s", actor.FullName(), issue.Key),
			ActionURL:    "/issues/" + issue.UID,
			Metadata:     map[string]string{"issueUid": issue.UID, "issueKey": issue.Key},
		})
	}

	recipients := s.watcherIDs(ctx, issue)
	recipients = append(recipients, issue.ReporterID)
	if issue.AssigneeID != nil {
		recipients = append(recipients, *issue.AssigneeID)
	}
	// Mention recipients already got the more specific notification.
	recipients = subtract(recipients, mentioned)
	_ = s.notifier.Dispatch(ctx, NotificationInput{
		RecipientIDs: recipients,
		ActorID:      actor.ID,
		Type:         domain.NotificationTypeComment,
		Title:        "New comment",
		Message:      fmt.Sprintf("%s commented on %s", actor.FullName(), issue.Key),
		ActionURL:    "/issues/" + issue.UID,
		Metadata:     map[string]string{"issueUid": issue.UID, "issueKey": issue.Key},
	})

	return comment, nil
}

// resolveMentionedParticipants matches @tokens in content against the
// project's participants.
func (s *IssueService) resolveMentionedParticipants(ctx context.Context, projectID uint, content string) []uint {
	if !strings.Contains(content, "@") {
		return nil
	}
	participantIDs, err := s.projectRepo.ParticipantIDs(ctx, projectID)
	if err != nil || len(participantIDs) == 0 {
		return nil
	}
	users, err := s.userRepo.FindByIDs(ctx, participantIDs)
	if err != nil {
		return nil
	}
	candidates := make([]MentionCandidate, 0, len(users))
	for i := range users {
		candidates = append(candidates, CandidateFromUser(&users[i]))
	}
	return ResolveMentions(content, candidates)
}

func subtract(ids, remove []uint) []uint {
	if len(remove) == 0 {
		return ids
	}
	drop := make(map[uint]bool, len(remove))
	for _, id := range remove {
		drop[id] = true
	}
	out := ids[:0]
	for _, id := range ids {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}

// EditComment updates a comment's content. Only the author may edit.
func (s *IssueService) EditComment(ctx context.Context, actor *domain.User, issueUID, commentUID, content string) (*domain.IssueComment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrInvalidInput
	}
	issue, err := s.Get(ctx, issueUID)
	if err != nil {
		return nil, err
	}
	var comment *domain.IssueComment
	for i := range issue.Comments {
		if issue.Comments[i].UID == commentUID {
			comment = &issue.Comments[i]
			break
		}
	}
	if comment == nil {
		return nil, ErrIssueNotFound
	}
	if comment.AuthorID != actor.ID {
		return nil, ErrPermissionDenied
	}

	now := time.Now()
	comment.Content = content
	comment.IsEdited = true
	comment.EditedAt = &now
	if err := s.issueRepo.SaveComment(ctx, comment); err != nil {
		logrus.WithError(err).Error("Failed to save comment edit")
		return nil, ErrInternalServer
	}
	return comment, nil
}

// LogTime adds worked hours to an issue.
func (s *IssueService) LogTime(ctx context.Context, actor *domain.User, uid string, hours float64) (*domain.Issue, error) {
	if hours <= 0 {
		return nil, ErrInvalidInput
	}
	issue, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !s.canEditIssue(actor, issue) {
		return nil, ErrPermissionDenied
	}
	issue.LoggedHours += hours
	if err := s.issueRepo.Save(ctx, issue); err != nil {
		logrus.WithError(err).WithField("issue_id", issue.ID).Error("Failed to log time")
		return nil, ErrInternalServer
	}
	return issue, nil
}

// Watch adds the user to the issue's watcher set.
func (s *IssueService) Watch(ctx context.Context, actor *domain.User, uid string) error {
	issue, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.issueRepo.AddWatcher(ctx, issue, actor); err != nil {
		logrus.WithError(err).Error("Failed to add watcher")
		return ErrInternalServer
	}
	return nil
}

// Unwatch removes the user from the issue's watcher set.
func (s *IssueService) Unwatch(ctx context.Context, actor *domain.User, uid string) error {
	issue, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.issueRepo.RemoveWatcher(ctx, issue, actor); err != nil {
		logrus.WithError(err).Error("Failed to remove watcher")
		return ErrInternalServer
	}
	return nil
}

// AddLink creates a typed relation between two issues.
func (s *IssueService) AddLink(ctx context.Context, actor *domain.User, issueUID, targetUID, linkType string) (*domain.IssueLink, error) {
	if actor == nil || actor.Role == domain.RoleViewer {
		return nil, ErrPermissionDenied
	}
	if !domain.IsValidLinkType(linkType) {
		return nil, ErrInvalidInput
	}
	issue, err := s.Get(ctx, issueUID)
	if err != nil {
		return nil, err
	}
	target, err := s.Get(ctx, targetUID)
	if err != nil {
		return nil, err
	}
	if issue.ID == target.ID {
		return nil, ErrInvalidInput
	}

	link := &domain.IssueLink{
		UID:           domain.NewLinkUID(),
		IssueID:       issue.ID,
		LinkType:      linkType,
		TargetIssueID: target.ID,
	}
	if err := s.issueRepo.SaveLink(ctx, link); err != nil {
		logrus.WithError(err).Error("Failed to save issue link")
		return nil, ErrInternalServer
	}
	link.TargetIssue = target
	return link, nil
}

// RemoveLink deletes a relation from an issue.
func (s *IssueService) RemoveLink(ctx context.Context, actor *domain.User, issueUID, linkUID string) error {
	if actor == nil || actor.Role == domain.RoleViewer {
		return ErrPermissionDenied
	}
	issue, err := s.Get(ctx, issueUID)
	if err != nil {
		return err
	}
	if err := s.issueRepo.DeleteLink(ctx, issue.ID, linkUID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrIssueNotFound
		}
		logrus.WithError(err).Error("Failed to delete issue link")
		return ErrInternalServer
	}
	return nil
}
