package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"project-hub/internal/service"
)

func TestResolveMentions(t *testing.T) {
	candidates := []service.MentionCandidate{
		{UserID: 1, Email: "jane.doe@example.com", FirstName: "Jane", LastName: "Doe"},
		{UserID: 2, Email: "bob@example.com", FirstName: "Bob", LastName: "Smith"},
		{UserID: 3, Email: "ops+oncall@example.com"},
	}

	tests := []struct {
		name    string
		content string
		want    []uint
	}{
		{
			name:    "email local part",
			content: "ping @jane.doe about this",
			want:    []uint{1},
		},
		{
			name:    "first name case insensitive",
			content: "thanks @BOB",
			want:    []uint{2},
		},
		{
			name:    "last name",
			content: "@smith please review",
			want:    []uint{2},
		},
		{
			name:    "compacted full name",
			content: "cc @janedoe",
			want:    []uint{1},
		},
		{
			name:    "local part with plus sign",
			content: "escalating to @ops+oncall",
			want:    []uint{3},
		},
		{
			name:    "multiple mentions",
			content: "@jane.doe and @bob should sync",
			want:    []uint{1, 2},
		},
		{
			name:    "duplicate mentions resolve once",
			content: "@bob @bob @smith",
			want:    []uint{2},
		},
		{
			name:    "unresolved token ignored",
			content: "hello @nobody",
			want:    nil,
		},
		{
			name:    "no mentions",
			content: "plain text without an at sign",
			want:    nil,
		},
		{
			name:    "bare at sign",
			content: "meet @ noon",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.ResolveMentions(tt.content, candidates)
			assert.Equal(t, tt.want, got)
		})
	}
}
