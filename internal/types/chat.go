// Package types provides type definitions for structured data shared across the interview-coach system.
package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role identifies the author of a chat message
type Role string

// Role constants
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ParseRole maps a role name to a Role, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAssistant:
		return RoleAssistant, nil
	case RoleSystem:
		return RoleSystem, nil
	case RoleTool:
		return RoleTool, nil
	default:
		return "", fmt.Errorf("unknown chat role %q", s)
	}
}

// UnmarshalJSON accepts role names in any case ("User", "assistant", ...).
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ChatMessage is one entry of an interview transcript.
type ChatMessage struct {
	Role    Role   `json:"role" validate:"required"`
	Content string `json:"content"`
}

// Transcript is the ordered list of messages exchanged in a session.
type Transcript []ChatMessage

// Split separates the transcript into prior history and the latest user utterance.
// When the last message is not from the user, ok is false and history is everything
// except that last message.
func (t Transcript) Split() (history Transcript, latest string, ok bool) {
	if len(t) == 0 {
		return Transcript{}, "", false
	}
	last := t[len(t)-1]
	history = append(Transcript{}, t[:len(t)-1]...)
	if last.Role != RoleUser {
		return history, "", false
	}
	return history, last.Content, true
}

// Render formats the transcript one message per line as "<role>: <content>".
func (t Transcript) Render() string {
	var sb strings.Builder
	for i, msg := range t {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(string(msg.Role))
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
	}
	return sb.String()
}

// SessionDocuments holds the normalized texts backing one interview session.
type SessionDocuments struct {
	SessionID          string `json:"session_id"`
	ResumeText         string `json:"resume_text"`
	JobDescriptionText string `json:"job_description_text"`
}

// Complete reports whether both documents are present.
func (d *SessionDocuments) Complete() bool {
	return d != nil && strings.TrimSpace(d.ResumeText) != "" && strings.TrimSpace(d.JobDescriptionText) != ""
}

// NewSessionID generates a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
