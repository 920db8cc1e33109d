package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasRecentPardon(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	incident := seedIncident(t, database, "1", "10", now)
	interventionID, err := ResolveWithVictimIntervention(database, incident.ID, "protected", "77", "no harassment", now)
	require.NoError(t, err)
	_, err = CreatePardon(database, incident.ID, interventionID, now)
	require.NoError(t, err)

	found, err := HasRecentPardon(database, "1", "10", "77", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, found)

	// Outside the lookback window.
	found, err = HasRecentPardon(database, "1", "10", "77", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, found)

	// A pardon is scoped to the guild, offender and victim triple.
	found, err = HasRecentPardon(database, "2", "10", "77", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, found)
	found, err = HasRecentPardon(database, "1", "99", "77", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, found)
	found, err = HasRecentPardon(database, "1", "10", "88", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInterventionWithoutPardonDoesNotMatch(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	incident := seedIncident(t, database, "1", "10", now)
	_, err := ResolveWithVictimIntervention(database, incident.ID, "protected", "77", "no harassment", now)
	require.NoError(t, err)

	found, err := HasRecentPardon(database, "1", "10", "77", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, found)
}
