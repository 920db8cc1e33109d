package db

import (
	"strings"
	"testing"
	"time"
	"warden/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	database, err := Init(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func seedIncident(t *testing.T, database *sqlx.DB, guildSf, offenderSf string, at time.Time) *model.Incident {
	t.Helper()
	incident := &model.Incident{
		GuildSf:    guildSf,
		ChannelSf:  "200",
		MessageSf:  "300",
		OffenderSf: offenderSf,
		MsgContent: "you are terrible",
		Context:    offenderSf + ": you are terrible",
		Categories: "harassment",
		At:         at.Unix(),
	}
	id, err := CreateIncident(database, incident)
	require.NoError(t, err)
	incident.ID = id
	return incident
}
