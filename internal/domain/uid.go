// Package domain defines the persisted data structures (database models).
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// MakeUID generates an external identifier of the form "<prefix>-<10 hex chars>".
// Numeric auto-increment IDs never leave the process; every API payload and group
// name is keyed by these instead.
func MakeUID(prefix string) string {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process is in much deeper trouble
		panic(fmt.Sprintf("domain: failed to read random bytes for uid: %v", err))
	}
	return prefix + "-" + hex.EncodeToString(b)
}

func NewUserUID() string         { return MakeUID("u") }
func NewProjectUID() string      { return MakeUID("p") }
func NewLabelUID() string        { return MakeUID("l") }
func NewEpicUID() string         { return MakeUID("e") }
func NewSprintUID() string       { return MakeUID("s") }
func NewIssueUID() string        { return MakeUID("i") }
func NewCommentUID() string      { return MakeUID("c") }
func NewLinkUID() string         { return MakeUID("lk") }
func NewNotificationUID() string { return MakeUID("n") }
func NewChatRoomUID() string     { return MakeUID("cr") }
func NewChatMessageUID() string  { return MakeUID("cm") }
