package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/quorum/internal/meetings/domain"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database"
)

const timeSlotColumns = `id, user_id, meeting_id, start_time, end_time, created_at`

// SQLTimeSlotRepository implements domain.TimeSlotRepository.
type SQLTimeSlotRepository struct {
	conn database.Connection
}

// NewSQLTimeSlotRepository creates a new SQLTimeSlotRepository.
func NewSQLTimeSlotRepository(conn database.Connection) *SQLTimeSlotRepository {
	return &SQLTimeSlotRepository{conn: conn}
}

// Create inserts a time slot. An unknown meeting surfaces as a constraint violation.
func (r *SQLTimeSlotRepository) Create(ctx context.Context, slot *domain.TimeSlot) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`INSERT INTO timeslots (`+timeSlotColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		slot.ID(),
		slot.ProposerID(),
		slot.MeetingID(),
		database.UTC(slot.Start()),
		database.UTC(slot.End()),
		database.UTC(slot.CreatedAt()),
	)
	return database.ClassifyWriteError(err)
}

// Update stores the window of a time slot.
func (r *SQLTimeSlotRepository) Update(ctx context.Context, slot *domain.TimeSlot) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`UPDATE timeslots SET start_time = ?, end_time = ? WHERE id = ?`,
		database.UTC(slot.Start()),
		database.UTC(slot.End()),
		slot.ID(),
	)
	return database.ClassifyWriteError(err)
}

// Delete removes a time slot; the schema cascades to its votes.
func (r *SQLTimeSlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`DELETE FROM timeslots WHERE id = ?`, id)
	return database.ClassifyWriteError(err)
}

// FindByID retrieves a time slot without its votes.
func (r *SQLTimeSlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TimeSlot, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+timeSlotColumns+` FROM timeslots WHERE id = ?`, id)
	slot, err := scanTimeSlot(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return slot, err
}

func (r *SQLTimeSlotRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.TimeSlot, error) {
	return r.findIn(ctx, "id", ids)
}

// FindByMeetingIDs returns the slots of the given meetings ordered by start.
func (r *SQLTimeSlotRepository) FindByMeetingIDs(ctx context.Context, meetingIDs []uuid.UUID) ([]*domain.TimeSlot, error) {
	return r.findIn(ctx, "meeting_id", meetingIDs)
}

// FindByProposer returns the slots proposed by proposerID.
func (r *SQLTimeSlotRepository) FindByProposer(ctx context.Context, proposerID uuid.UUID) ([]*domain.TimeSlot, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+timeSlotColumns+` FROM timeslots WHERE user_id = ? ORDER BY start_time, id`, proposerID)
	if err != nil {
		return nil, err
	}
	return collectTimeSlots(rows)
}

// findIn selects the slots whose column matches one of ids. column is
// always a constant supplied by this file.
func (r *SQLTimeSlotRepository) findIn(ctx context.Context, column string, ids []uuid.UUID) ([]*domain.TimeSlot, error) {
	if len(ids) == 0 {
		return []*domain.TimeSlot{}, nil
	}
	query, args, err := database.In(
		`SELECT `+timeSlotColumns+` FROM timeslots WHERE `+column+` IN (?) ORDER BY start_time, id`, ids)
	if err != nil {
		return nil, err
	}
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectTimeSlots(rows)
}

func collectTimeSlots(rows database.Rows) ([]*domain.TimeSlot, error) {
	defer rows.Close()

	slots := make([]*domain.TimeSlot, 0)
	for rows.Next() {
		slot, err := scanTimeSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func scanTimeSlot(row database.Row) (*domain.TimeSlot, error) {
	var (
		id, proposerID, meetingID uuid.UUID
		start, end, createdAt     database.Timestamp
	)
	if err := row.Scan(&id, &proposerID, &meetingID, &start, &end, &createdAt); err != nil {
		return nil, err
	}
	return domain.RehydrateTimeSlot(id, proposerID, meetingID, start.Time, end.Time, createdAt.Time), nil
}
