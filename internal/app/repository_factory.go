package app

import (
	"fmt"

	identityDomain "github.com/felixgeelhaar/quorum/internal/identity/domain"
	identityPersistence "github.com/felixgeelhaar/quorum/internal/identity/infrastructure/persistence"
	meetingsDomain "github.com/felixgeelhaar/quorum/internal/meetings/domain"
	meetingsPersistence "github.com/felixgeelhaar/quorum/internal/meetings/infrastructure/persistence"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/outbox"
)

// RepositoryFactory creates repositories over one database connection.
// The SQL repositories are driver-agnostic; the factory only refuses
// connections whose driver it does not know.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

func (f *RepositoryFactory) check() error {
	if !f.driver.IsValid() {
		return fmt.Errorf("unsupported driver: %s", f.driver)
	}
	return nil
}

// UserRepository creates the account repository.
func (f *RepositoryFactory) UserRepository() (identityDomain.UserRepository, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return identityPersistence.NewSQLUserRepository(f.conn), nil
}

// MeetingRepository creates the meeting repository.
func (f *RepositoryFactory) MeetingRepository() (meetingsDomain.MeetingRepository, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return meetingsPersistence.NewSQLMeetingRepository(f.conn), nil
}

// TimeSlotRepository creates the time slot repository.
func (f *RepositoryFactory) TimeSlotRepository() (meetingsDomain.TimeSlotRepository, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return meetingsPersistence.NewSQLTimeSlotRepository(f.conn), nil
}

// VoteRepository creates the vote repository.
func (f *RepositoryFactory) VoteRepository() (meetingsDomain.VoteRepository, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return meetingsPersistence.NewSQLVoteRepository(f.conn), nil
}

// OutboxRepository creates the outbox repository.
func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	return outbox.NewSQLRepository(f.conn), nil
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
