package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/quorum/internal/meetings/domain"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database"
)

const meetingColumns = `id, user_id, title, description, created_at`

// SQLMeetingRepository implements domain.MeetingRepository.
type SQLMeetingRepository struct {
	conn database.Connection
}

// NewSQLMeetingRepository creates a new SQLMeetingRepository.
func NewSQLMeetingRepository(conn database.Connection) *SQLMeetingRepository {
	return &SQLMeetingRepository{conn: conn}
}

// Create inserts a meeting.
func (r *SQLMeetingRepository) Create(ctx context.Context, meeting *domain.Meeting) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`INSERT INTO meetings (`+meetingColumns+`) VALUES (?, ?, ?, ?, ?)`,
		meeting.ID(),
		meeting.OwnerID(),
		meeting.Title(),
		meeting.Description(),
		database.UTC(meeting.CreatedAt()),
	)
	return database.ClassifyWriteError(err)
}

// Update stores the title and description of a meeting.
func (r *SQLMeetingRepository) Update(ctx context.Context, meeting *domain.Meeting) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE meetings SET title = ?, description = ? WHERE id = ?`,
		meeting.Title(),
		meeting.Description(),
		meeting.ID(),
	)
	return database.ClassifyWriteError(err)
}

// Delete removes a meeting; the schema cascades to slots and votes.
func (r *SQLMeetingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`DELETE FROM meetings WHERE id = ?`, id)
	return database.ClassifyWriteError(err)
}

// FindByID retrieves a meeting without its slots.
func (r *SQLMeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Meeting, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id)
	meeting, err := scanMeeting(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return meeting, err
}

// FindByOwner returns the meetings owned by ownerID, newest first.
func (r *SQLMeetingRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Meeting, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE user_id = ? ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectMeetings(rows)
}

// FindByIDs returns the meetings with the given ids that exist.
func (r *SQLMeetingRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Meeting, error) {
	if len(ids) == 0 {
		return []*domain.Meeting{}, nil
	}
	query, args, err := database.In(
		`SELECT `+meetingColumns+` FROM meetings WHERE id IN (?) ORDER BY created_at DESC, id`, ids)
	if err != nil {
		return nil, err
	}
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectMeetings(rows)
}

func collectMeetings(rows database.Rows) ([]*domain.Meeting, error) {
	defer rows.Close()

	meetings := make([]*domain.Meeting, 0)
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	return meetings, rows.Err()
}

func scanMeeting(row database.Row) (*domain.Meeting, error) {
	var (
		id          uuid.UUID
		ownerID     uuid.UUID
		title       string
		description *string
		createdAt   database.Timestamp
	)
	if err := row.Scan(&id, &ownerID, &title, &description, &createdAt); err != nil {
		return nil, err
	}
	return domain.RehydrateMeeting(id, ownerID, title, description, createdAt.Time), nil
}
