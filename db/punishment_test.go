package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPunishmentExecutionFlag(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	first := seedIncident(t, database, "1", "10", now)
	require.NoError(t, ResolveWithGroupProtection(database, first.ID, "protected", "no spam", false, now.Add(time.Hour), now))
	probation, err := FindActiveProbation(database, "1", "10", "", now)
	require.NoError(t, err)
	require.NotNil(t, probation)

	second := seedIncident(t, database, "1", "10", now)
	punishmentID, err := CreatePunishment(database, probation.ID, second.ID, now.Add(time.Hour), now)
	require.NoError(t, err)

	cases, err := GetUnexecutedPunishments(database)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, punishmentID, cases[0].ID)
	assert.Equal(t, probation.ID, cases[0].ProbationID)
	assert.Equal(t, "1", cases[0].GuildSf)
	assert.Equal(t, "10", cases[0].OffenderSf)

	require.NoError(t, MarkPunishmentExecuted(database, punishmentID))
	cases, err = GetUnexecutedPunishments(database)
	require.NoError(t, err)
	assert.Empty(t, cases)
}

func TestCountProbationsForIncident(t *testing.T) {
	database := testDB(t)
	now := time.Now()

	incident := seedIncident(t, database, "1", "10", now)
	count, err := CountProbationsForIncident(database, incident.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = CreateProbation(database, incident.ID, now.Add(time.Hour), now)
	require.NoError(t, err)
	count, err = CountProbationsForIncident(database, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
