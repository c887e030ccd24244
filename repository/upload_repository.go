package repository

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"cognify/domain"
)

// uploadTTL is how long extracted upload text stays available. Uploads are
// a staging area between the upload request and the study-content request
// that consumes them, not long-term storage.
const uploadTTL = 30 * time.Minute

type uploadRecord struct {
	entry     domain.UploadEntry
	expiresAt time.Time
}

// UploadRepository implementation: in-memory with TTL eviction. Expired
// entries are swept on every access rather than by a background goroutine.
type uploadRepository struct {
	mu      sync.Mutex
	entries map[string]uploadRecord
	now     func() time.Time
	logger  *slog.Logger
}

// NewUploadRepository creates an in-memory upload store.
func NewUploadRepository(logger *slog.Logger) UploadRepository {
	return newUploadRepository(time.Now, logger)
}

func newUploadRepository(now func() time.Time, logger *slog.Logger) *uploadRepository {
	return &uploadRepository{
		entries: make(map[string]uploadRecord),
		now:     now,
		logger:  logger,
	}
}

// Put stores extracted text under a fresh id and returns it.
func (r *uploadRepository) Put(name, text string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()

	id := uuid.NewString()
	r.entries[id] = uploadRecord{
		entry:     domain.UploadEntry{ID: id, Name: name, Text: text},
		expiresAt: r.now().Add(uploadTTL),
	}
	r.logger.Debug("upload stored", "upload_id", id, "name", name, "chars", len(text))
	return id
}

// Get returns the entry for id if it exists and has not expired.
func (r *uploadRepository) Get(id string) (*domain.UploadEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()

	rec, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	entry := rec.entry
	return &entry, true
}

// GetMany returns the live entries among ids, preserving input order.
// Unknown and expired ids are simply absent from the result.
func (r *uploadRepository) GetMany(ids []string) []*domain.UploadEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()

	var entries []*domain.UploadEntry
	for _, id := range ids {
		if rec, ok := r.entries[id]; ok {
			entry := rec.entry
			entries = append(entries, &entry)
		}
	}
	return entries
}

// Delete removes an entry. Deleting an unknown id is a no-op.
func (r *uploadRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// sweep drops expired entries. Callers must hold the lock.
func (r *uploadRepository) sweep() {
	now := r.now()
	for id, rec := range r.entries {
		if now.After(rec.expiresAt) {
			delete(r.entries, id)
		}
	}
}
