package http

import (
	"time"

	"project-hub/internal/domain"
	"project-hub/internal/service"
)

// API payloads use camelCase keys and external uids; numeric database IDs
// never appear on the wire.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// UserPayload is the wire shape of an account.
type UserPayload struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
	Initials  string `json:"initials"`
	Role      string `json:"role"`
	Avatar    string `json:"avatar"`
	IsActive  bool   `json:"isActive"`
}

func renderUser(u *domain.User) UserPayload {
	return UserPayload{
		ID:        u.UID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Initials:  u.Initials(),
		Role:      u.Role,
		Avatar:    u.Avatar,
		IsActive:  u.IsActive,
	}
}

func renderUsers(users []domain.User) []UserPayload {
	out := make([]UserPayload, 0, len(users))
	for i := range users {
		out = append(out, renderUser(&users[i]))
	}
	return out
}

// ProjectPayload is the wire shape of a project.
type ProjectPayload struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Key         string       `json:"key"`
	Description string       `json:"description"`
	Lead        *UserPayload `json:"lead,omitempty"`
	Avatar      string       `json:"avatar"`
	CreatedAt   string       `json:"createdAt"`
}

func renderProject(p *domain.Project) ProjectPayload {
	payload := ProjectPayload{
		ID:          p.UID,
		Name:        p.Name,
		Key:         p.Key,
		Description: p.Description,
		Avatar:      p.Avatar,
		CreatedAt:   formatTime(p.CreatedAt),
	}
	if p.Lead.ID != 0 {
		lead := renderUser(&p.Lead)
		payload.Lead = &lead
	}
	return payload
}

// LabelPayload is the wire shape of a label.
type LabelPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func renderLabel(l *domain.Label) LabelPayload {
	return LabelPayload{ID: l.UID, Name: l.Name, Color: l.Color}
}

// EpicPayload is the wire shape of an epic.
type EpicPayload struct {
	ID      string `json:"id"`
	Key     string `json:"key"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Color   string `json:"color"`
	Status  string `json:"status"`
}

func renderEpic(e *domain.Epic) EpicPayload {
	return EpicPayload{
		ID:      e.UID,
		Key:     e.Key,
		Name:    e.Name,
		Summary: e.Summary,
		Color:   e.Color,
		Status:  e.Status,
	}
}

// SprintPayload is the wire shape of a sprint.
type SprintPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Goal      string `json:"goal"`
	Status    string `json:"status"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func renderSprint(s *domain.Sprint) SprintPayload {
	return SprintPayload{
		ID:        s.UID,
		Name:      s.Name,
		Goal:      s.Goal,
		Status:    s.Status,
		StartDate: formatDate(s.StartDate),
		EndDate:   formatDate(s.EndDate),
	}
}

// IssuePayload is the wire shape of an issue. Comments and links are included
// only on detail responses.
type IssuePayload struct {
	ID             string             `json:"id"`
	Key            string             `json:"key"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	IssueType      string             `json:"issueType"`
	Status         string             `json:"status"`
	Priority       string             `json:"priority"`
	Assignee       *UserPayload       `json:"assignee"`
	Reporter       *UserPayload       `json:"reporter"`
	DueDate        *string            `json:"dueDate"`
	StoryPoints    *int               `json:"storyPoints"`
	EstimatedHours *float64           `json:"estimatedHours"`
	LoggedHours    float64            `json:"loggedHours"`
	Labels         []LabelPayload     `json:"labels"`
	Watchers       []UserPayload      `json:"watchers,omitempty"`
	Comments       []CommentPayload   `json:"comments,omitempty"`
	Links          []IssueLinkPayload `json:"links,omitempty"`
	CreatedAt      string             `json:"createdAt"`
	UpdatedAt      string             `json:"updatedAt"`
}

// CommentPayload is the wire shape of an issue comment.
type CommentPayload struct {
	ID        string       `json:"id"`
	Author    *UserPayload `json:"author"`
	Content   string       `json:"content"`
	IsEdited  bool         `json:"isEdited"`
	CreatedAt string       `json:"createdAt"`
}

func renderComment(cm *domain.IssueComment) CommentPayload {
	payload := CommentPayload{
		ID:        cm.UID,
		Content:   cm.Content,
		IsEdited:  cm.IsEdited,
		CreatedAt: formatTime(cm.CreatedAt),
	}
	if cm.Author.ID != 0 {
		author := renderUser(&cm.Author)
		payload.Author = &author
	}
	return payload
}

// IssueLinkPayload is the wire shape of an issue link.
type IssueLinkPayload struct {
	ID          string `json:"id"`
	LinkType    string `json:"linkType"`
	TargetID    string `json:"targetId"`
	TargetKey   string `json:"targetKey"`
	TargetTitle string `json:"targetTitle"`
}

func renderIssue(issue *domain.Issue, detail bool) IssuePayload {
	payload := IssuePayload{
		ID:             issue.UID,
		Key:            issue.Key,
		Title:          issue.Title,
		Description:    issue.Description,
		IssueType:      issue.IssueType,
		Status:         issue.Status,
		Priority:       issue.Priority,
		StoryPoints:    issue.StoryPoints,
		EstimatedHours: issue.EstimatedHours,
		LoggedHours:    issue.LoggedHours,
		Labels:         make([]LabelPayload, 0, len(issue.Labels)),
		CreatedAt:      formatTime(issue.CreatedAt),
		UpdatedAt:      formatTime(issue.UpdatedAt),
	}
	if issue.Assignee != nil {
		assignee := renderUser(issue.Assignee)
		payload.Assignee = &assignee
	}
	if issue.Reporter.ID != 0 {
		reporter := renderUser(&issue.Reporter)
		payload.Reporter = &reporter
	}
	if issue.DueDate != nil {
		due := formatDate(*issue.DueDate)
		payload.DueDate = &due
	}
	for i := range issue.Labels {
		payload.Labels = append(payload.Labels, renderLabel(&issue.Labels[i]))
	}
	if !detail {
		return payload
	}

	payload.Watchers = renderUsers(issue.Watchers)
	payload.Comments = make([]CommentPayload, 0, len(issue.Comments))
	for i := range issue.Comments {
		payload.Comments = append(payload.Comments, renderComment(&issue.Comments[i]))
	}
	payload.Links = make([]IssueLinkPayload, 0, len(issue.Links))
	for i := range issue.Links {
		link := &issue.Links[i]
		lp := IssueLinkPayload{ID: link.UID, LinkType: link.LinkType}
		if link.TargetIssue != nil {
			lp.TargetID = link.TargetIssue.UID
			lp.TargetKey = link.TargetIssue.Key
			lp.TargetTitle = link.TargetIssue.Title
		}
		payload.Links = append(payload.Links, lp)
	}
	return payload
}

// NotificationPayload is the wire shape of a notification.
type NotificationPayload struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Type      string            `json:"type"`
	IsRead    bool              `json:"isRead"`
	ActionURL string            `json:"actionUrl"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt string            `json:"createdAt"`
}

func renderNotification(n *domain.Notification) NotificationPayload {
	meta, err := n.ParseMetadata()
	if err != nil {
		meta = map[string]string{}
	}
	return NotificationPayload{
		ID:        n.UID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    n.IsRead,
		ActionURL: n.ActionURL,
		Metadata:  meta,
		CreatedAt: formatTime(n.CreatedAt),
	}
}

// RoomPayload is the sidebar shape of a chat room.
type RoomPayload struct {
	ID           string                  `json:"id"`
	RoomType     string                  `json:"roomType"`
	Name         string                  `json:"name"`
	IsPrivate    bool                    `json:"isPrivate"`
	Participants []UserPayload           `json:"participants"`
	LastMessage  *service.MessagePayload `json:"lastMessage"`
	UnreadCount  int64                   `json:"unreadCount"`
	UpdatedAt    string                  `json:"updatedAt"`
}

func renderRoomSummary(summary *service.RoomSummary) RoomPayload {
	payload := RoomPayload{
		ID:          summary.Room.UID,
		RoomType:    summary.Room.RoomType,
		Name:        summary.Room.Name,
		IsPrivate:   summary.Room.IsPrivate,
		UnreadCount: summary.UnreadCount,
		UpdatedAt:   formatTime(summary.Room.UpdatedAt),
	}
	payload.Participants = make([]UserPayload, 0, len(summary.Participants))
	for i := range summary.Participants {
		p := &summary.Participants[i]
		if p.User.ID != 0 {
			payload.Participants = append(payload.Participants, renderUser(&p.User))
		}
	}
	if summary.LastMessage != nil {
		last := service.RenderMessage(summary.LastMessage, summary.Room)
		payload.LastMessage = &last
	}
	return payload
}
