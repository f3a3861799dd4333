package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWireDateFormat(t *testing.T) {
	at := time.Date(2026, 9, 7, 14, 30, 15, 987654321, time.FixedZone("AEST", 10*3600))
	assert.Equal(t, "2026-09-07T04:30:15Z", wireDate(at), "dates go out as UTC without fractional seconds")
}

func TestTeamMembersUpdateJoinsIDs(t *testing.T) {
	fields := TeamMembersUpdate{MemberIDs: []string{"u2", "u1", "u2"}}.FieldMap()
	assert.Equal(t, Fields{"Team Members": "u1,u2"}, fields)
}

func TestDateRangeUpdateClearSendsExplicitNulls(t *testing.T) {
	fields := DateRangeUpdate{Clear: true}.FieldMap()

	v, ok := fields["Start Date"]
	assert.True(t, ok)
	assert.Nil(t, v)
	v, ok = fields["End Date"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestEventWindowUpdateTravelsTogether(t *testing.T) {
	start := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)

	fields := EventWindowUpdate{Start: &start, End: &end, Duration: 3}.FieldMap()
	assert.Equal(t, "2026-09-07T00:00:00Z", fields["Start Date"])
	assert.Equal(t, "2026-09-09T00:00:00Z", fields["End Date"])
	assert.Equal(t, 3, fields["Duration"])

	cleared := EventWindowUpdate{}.FieldMap()
	assert.Nil(t, cleared["Start Date"])
	assert.Nil(t, cleared["End Date"])
	assert.Equal(t, 0, cleared["Duration"])
}

func TestProjectCreateFieldMap(t *testing.T) {
	fields := ProjectCreate{
		Name:      "Deck",
		Status:    "pending",
		CompanyID: "c1",
		MemberIDs: []string{"u1"},
	}.FieldMap()

	assert.Equal(t, "Deck", fields["Name"])
	assert.Equal(t, "c1", fields["Company"])
	assert.Equal(t, "u1", fields["Team Members"])
	assert.Nil(t, fields["Start Date"])
}
