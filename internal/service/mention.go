package service

import (
	"regexp"
	"strings"

	"project-hub/internal/domain"
)

// mentionPattern matches "@token" where token may contain word characters,
// dots, hyphens and plus signs (covers email local parts).
var mentionPattern = regexp.MustCompile(`@([\w.+-]+)`)

// MentionCandidate is the slice of a user a mention token is matched against.
type MentionCandidate struct {
	UserID    uint
	Email     string
	FirstName string
	LastName  string
}

// CandidateFromUser projects a user onto its mention-matching fields.
func CandidateFromUser(u *domain.User) MentionCandidate {
	return MentionCandidate{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// ResolveMentions extracts "@token" mentions from content and resolves each
// token against the candidates. A token matches a candidate's email local
// part, first name, last name or compacted full name, case-insensitively.
// Each user is returned at most once; unresolved tokens are ignored.
func ResolveMentions(content string, candidates []MentionCandidate) []uint {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[uint]bool)
	var resolved []uint
	for _, m := range matches {
		token := strings.ToLower(m[1])
		for _, c := range candidates {
			if seen[c.UserID] || !matchesCandidate(token, c) {
				continue
			}
			seen[c.UserID] = true
			resolved = append(resolved, c.UserID)
		}
	}
	return resolved
}

func matchesCandidate(token string, c MentionCandidate) bool {
	local := c.Email
	if idx := strings.IndexByte(local, '@'); idx > 0 {
		local = local[:idx]
	}
	if token == strings.ToLower(local) {
		return true
	}
	if c.FirstName != "" && token == strings.ToLower(c.FirstName) {
		return true
	}
	if c.LastName != "" && token == strings.ToLower(c.LastName) {
		return true
	}
	full := strings.ToLower(c.FirstName + c.LastName)
	return full != "" && token == full
}
