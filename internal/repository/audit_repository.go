package repository

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/iliyamo/notes-backend/internal/model"
	"github.com/iliyamo/notes-backend/internal/queue"
	queue_publisher "github.com/iliyamo/notes-backend/internal/service"
)

// AuditRepo appends rows to the audit_revision table.  It implements
// AuditRecorder and is deliberately infallible from the caller's point
// of view: a revision that cannot be written is logged and dropped, it
// never fails the business write it describes.
type AuditRepo struct {
	DB *sql.DB
	// PublishEvents mirrors each revision to the message broker for
	// external consumers when true.
	PublishEvents bool
}

func NewAuditRepo(db *sql.DB, publishEvents bool) *AuditRepo {
	return &AuditRepo{DB: db, PublishEvents: publishEvents}
}

// Record writes one revision stamped with the acting login and, when
// enabled, publishes a matching AuditEvent.  Both halves are best
// effort.  The context's cancellation is not honored on the insert: an
// aborted request that already committed its write still gets its
// revision.
func (r *AuditRepo) Record(ctx context.Context, actor, entity, action string, entityID uint64) {
	ts := time.Now().UTC()

	insertCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := r.DB.ExecContext(insertCtx,
		"INSERT INTO audit_revision (ts, username) VALUES (?,?)", ts, actor)
	if err != nil {
		log.Printf("audit: revision insert failed (entity=%s action=%s id=%d): %v",
			entity, action, entityID, err)
		return
	}

	if !r.PublishEvents {
		return
	}
	var revID uint64
	if id, err := res.LastInsertId(); err == nil {
		revID = uint64(id)
	}
	_ = queue_publisher.PublishAuditRecorded(insertCtx, queue.AuditEvent{
		RevisionID: revID,
		Username:   actor,
		Entity:     entity,
		Action:     action,
		EntityID:   entityID,
		Ts:         ts.Format(time.RFC3339),
	})
}

// Revisions returns the newest revisions up to limit, for inspection and
// tests.  The table itself is append-only.
func (r *AuditRepo) Revisions(ctx context.Context, limit int) ([]model.AuditRevision, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, ts, username FROM audit_revision ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revs := []model.AuditRevision{}
	for rows.Next() {
		var rev model.AuditRevision
		if err := rows.Scan(&rev.ID, &rev.Ts, &rev.Username); err != nil {
			return nil, err
		}
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}
