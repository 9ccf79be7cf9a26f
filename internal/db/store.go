package db

import (
	"context"
	"fmt"

	"github.com/jonathan/interview-coach/internal/types"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// SessionStore is a key-value store for session documents. Writes are
// last-write-wins; Put writes all records or none.
type SessionStore interface {
	Put(ctx context.Context, records map[string]string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Close() error
}

// ResumeKey is the record key holding a session's resume text.
func ResumeKey(sessionID string) string { return "resume:" + sessionID }

// JobKey is the record key holding a session's job-description text.
func JobKey(sessionID string) string { return "job:" + sessionID }

// SaveDocuments writes both session documents in one unit.
func SaveDocuments(ctx context.Context, store SessionStore, docs *types.SessionDocuments) error {
	if docs == nil || docs.SessionID == "" {
		return fmt.Errorf("session documents require a session id")
	}
	if !docs.Complete() {
		return fmt.Errorf("session %s: both resume and job description are required", docs.SessionID)
	}
	return store.Put(ctx, map[string]string{
		ResumeKey(docs.SessionID): docs.ResumeText,
		JobKey(docs.SessionID):    docs.JobDescriptionText,
	})
}

// LoadDocuments reads a session's documents. It returns nil, nil when either is missing.
func LoadDocuments(ctx context.Context, store SessionStore, sessionID string) (*types.SessionDocuments, error) {
	return LoadDocumentsByKey(ctx, store, sessionID, ResumeKey(sessionID), JobKey(sessionID))
}

// LoadDocumentsByKey reads documents stored under explicit keys.
func LoadDocumentsByKey(ctx context.Context, store SessionStore, sessionID, resumeKey, jobKey string) (*types.SessionDocuments, error) {
	resume, ok, err := store.Get(ctx, resumeKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	job, ok, err := store.Get(ctx, jobKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	docs := &types.SessionDocuments{SessionID: sessionID, ResumeText: resume, JobDescriptionText: job}
	if !docs.Complete() {
		return nil, nil
	}
	return docs, nil
}

// Options selects and configures a store backend.
type Options struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
}

// Open returns the store selected by opts.Driver.
func Open(ctx context.Context, opts Options) (SessionStore, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverPostgres:
		return Connect(ctx, opts.DatabaseURL)
	case DriverSQLite:
		return NewSQLite(ctx, opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
