package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/quorum/internal/meetings/domain"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database"
)

const voteColumns = `id, user_id, timeslot_id, created_at`

// SQLVoteRepository implements domain.VoteRepository.
type SQLVoteRepository struct {
	conn database.Connection
}

// NewSQLVoteRepository creates a new SQLVoteRepository.
func NewSQLVoteRepository(conn database.Connection) *SQLVoteRepository {
	return &SQLVoteRepository{conn: conn}
}

// Create inserts a vote. An unknown slot surfaces as a constraint violation.
func (r *SQLVoteRepository) Create(ctx context.Context, vote *domain.Vote) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`INSERT INTO votes (`+voteColumns+`) VALUES (?, ?, ?, ?)`,
		vote.ID(),
		vote.VoterID(),
		vote.TimeSlotID(),
		database.UTC(vote.CreatedAt()),
	)
	return database.ClassifyWriteError(err)
}

func (r *SQLVoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`DELETE FROM votes WHERE id = ?`, id)
	return database.ClassifyWriteError(err)
}

func (r *SQLVoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Vote, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+voteColumns+` FROM votes WHERE id = ?`, id)
	vote, err := scanVote(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return vote, err
}

// FindByTimeSlotIDs returns the votes on the given slots, oldest first.
func (r *SQLVoteRepository) FindByTimeSlotIDs(ctx context.Context, timeSlotIDs []uuid.UUID) ([]*domain.Vote, error) {
	if len(timeSlotIDs) == 0 {
		return []*domain.Vote{}, nil
	}
	query, args, err := database.In(
		`SELECT `+voteColumns+` FROM votes WHERE timeslot_id IN (?) ORDER BY created_at, id`, timeSlotIDs)
	if err != nil {
		return nil, err
	}
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectVotes(rows)
}

func (r *SQLVoteRepository) FindByVoter(ctx context.Context, voterID uuid.UUID) ([]*domain.Vote, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+voteColumns+` FROM votes WHERE user_id = ? ORDER BY created_at, id`, voterID)
	if err != nil {
		return nil, err
	}
	return collectVotes(rows)
}

func collectVotes(rows database.Rows) ([]*domain.Vote, error) {
	defer rows.Close()

	votes := make([]*domain.Vote, 0)
	for rows.Next() {
		vote, err := scanVote(rows)
		if err != nil {
			return nil, err
		}
		votes = append(votes, vote)
	}
	return votes, rows.Err()
}

func scanVote(row database.Row) (*domain.Vote, error) {
	var (
		id, voterID, timeSlotID uuid.UUID
		createdAt               database.Timestamp
	)
	if err := row.Scan(&id, &voterID, &timeSlotID, &createdAt); err != nil {
		return nil, err
	}
	return domain.RehydrateVote(id, voterID, timeSlotID, createdAt.Time), nil
}
