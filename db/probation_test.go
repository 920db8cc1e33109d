package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindActiveProbationScoping(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	// Probation rooted in a victim intervention against victim 77.
	victimIncident := seedIncident(t, database, "1", "10", now)
	_, err := ResolveWithVictimIntervention(database, victimIncident.ID, "protected", "77", "no harassment", now)
	require.NoError(t, err)
	_, err = CreateProbation(database, victimIncident.ID, now.Add(time.Hour), now)
	require.NoError(t, err)

	// Victim-scoped lookup matches only its own victim.
	probation, err := FindActiveProbation(database, "1", "10", "77", now)
	require.NoError(t, err)
	require.NotNil(t, probation)
	assert.Equal(t, victimIncident.ID, probation.IncidentID)

	probation, err = FindActiveProbation(database, "1", "10", "88", now)
	require.NoError(t, err)
	assert.Nil(t, probation)

	// Unscoped lookup wants a group intervention, which this probation lacks.
	probation, err = FindActiveProbation(database, "1", "10", "", now)
	require.NoError(t, err)
	assert.Nil(t, probation)

	// A different guild or offender never matches.
	probation, err = FindActiveProbation(database, "2", "10", "77", now)
	require.NoError(t, err)
	assert.Nil(t, probation)
	probation, err = FindActiveProbation(database, "1", "99", "77", now)
	require.NoError(t, err)
	assert.Nil(t, probation)
}

func TestFindActiveProbationIgnoresExpired(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	incident := seedIncident(t, database, "1", "10", now)
	require.NoError(t, ResolveWithGroupProtection(database, incident.ID, "protected", "no spam", false, now.Add(-time.Minute), now.Add(-2*time.Hour)))

	probation, err := FindActiveProbation(database, "1", "10", "", now)
	require.NoError(t, err)
	assert.Nil(t, probation)
}

func TestProbationNotificationQueries(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	incident := seedIncident(t, database, "1", "10", now)
	require.NoError(t, ResolveWithGroupProtection(database, incident.ID, "protected", "no spam", false, now.Add(-time.Minute), now.Add(-time.Hour)))

	starts, err := GetStartUninformedProbations(database)
	require.NoError(t, err)
	require.Len(t, starts, 1)
	assert.Equal(t, "no spam", starts[0].Rule)
	assert.Equal(t, "10", starts[0].OffenderSf)
	assert.Equal(t, incident.MsgContent, starts[0].MsgContent)

	require.NoError(t, MarkProbationStartInformed(database, starts[0].ID))
	starts, err = GetStartUninformedProbations(database)
	require.NoError(t, err)
	assert.Empty(t, starts)

	ends, err := GetExpiredUninformedProbations(database, now)
	require.NoError(t, err)
	require.Len(t, ends, 1)

	require.NoError(t, MarkProbationEndInformed(database, ends[0].ID))
	ends, err = GetExpiredUninformedProbations(database, now)
	require.NoError(t, err)
	assert.Empty(t, ends)
}

func TestUnexpiredProbationNotEndNotified(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	incident := seedIncident(t, database, "1", "10", now)
	require.NoError(t, ResolveWithGroupProtection(database, incident.ID, "protected", "no spam", false, now.Add(time.Hour), now))

	ends, err := GetExpiredUninformedProbations(database, now)
	require.NoError(t, err)
	assert.Empty(t, ends)
}

func TestProbationWithoutInterventionHasEmptyRule(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	incident := seedIncident(t, database, "1", "10", now)
	_, err := CreateProbation(database, incident.ID, now.Add(time.Hour), now)
	require.NoError(t, err)

	starts, err := GetStartUninformedProbations(database)
	require.NoError(t, err)
	require.Len(t, starts, 1)
	assert.Empty(t, starts[0].Rule)
}
