package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	assert.Equal(t, Permitted, Authorize(owner, owner, true))
	assert.Equal(t, Forbidden, Authorize(other, owner, true))
	assert.Equal(t, NotFound, Authorize(owner, owner, false))
	assert.Equal(t, NotFound, Authorize(other, owner, false))
}

func TestAuthorizeResource(t *testing.T) {
	owner := uuid.New()
	meeting := RehydrateMeeting(uuid.New(), owner, "Standup", nil, now)
	slot := RehydrateTimeSlot(uuid.New(), owner, meeting.ID(), now, now, now)
	vote := RehydrateVote(uuid.New(), owner, slot.ID(), now)

	assert.Equal(t, Permitted, AuthorizeResource(owner, meeting))
	assert.Equal(t, Permitted, AuthorizeResource(owner, slot))
	assert.Equal(t, Permitted, AuthorizeResource(owner, vote))
	assert.Equal(t, Forbidden, AuthorizeResource(uuid.New(), meeting))

	var missing *Meeting
	assert.Equal(t, NotFound, AuthorizeResource(owner, missing))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "permitted", Permitted.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "forbidden", Forbidden.String())
	assert.Equal(t, "unknown", Decision(42).String())
}
