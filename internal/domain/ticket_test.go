package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLabelsCoverEveryStatus(t *testing.T) {
	require.Len(t, statusLabels, len(TicketStatuses))
	for _, status := range TicketStatuses {
		label, ok := StatusLabel(status)
		require.True(t, ok, "missing label for %s", status)
		assert.NotEmpty(t, label.En)
		assert.NotEmpty(t, label.Ar)
	}
}

func TestTicketStatusValid(t *testing.T) {
	assert.True(t, TicketStatusRequiresOfficialContact.Valid())
	assert.False(t, TicketStatus("CLOSED").Valid())
	assert.False(t, TicketStatus("").Valid())
}

func TestServiceTypeValid(t *testing.T) {
	for _, st := range ServiceTypes {
		assert.True(t, st.Valid(), st)
	}
	assert.False(t, ServiceType("passport").Valid())
	assert.False(t, ServiceType("Traffic").Valid())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "foo@example.com", NormalizeEmail("  Foo@Example.COM "))
}

func TestTimelineEntries(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("AST", 3*3600))

	created := CreatedEntry(at)
	assert.Equal(t, "Ticket created", created.Action)
	assert.Equal(t, ActorSystem, created.Actor)
	assert.Equal(t, time.UTC, created.Timestamp.Location())

	status := StatusChangedEntry(TicketStatusInReview, "Admin", at)
	assert.Equal(t, "Status changed to In Review", status.Action)
	assert.Equal(t, "تم تغيير الحالة إلى قيد المراجعة", status.ActionAr)
	assert.Equal(t, "Admin", status.Actor)

	ai := AIAnalysisEntry(at)
	assert.Equal(t, "AI analysis completed", ai.Action)
	assert.Equal(t, ActorAIAssistant, ai.Actor)
}

func TestTicketCloneIsDeep(t *testing.T) {
	notes := "internal"
	original := &Ticket{
		Attachments: []string{"a"},
		Timeline:    []TimelineEntry{CreatedEntry(time.Now())},
		AISolution:  &AISolution{Steps: []LocalizedText{{En: "one"}}},
		AdminNotes:  &notes,
	}

	cp := original.Clone()
	cp.Attachments[0] = "b"
	cp.Timeline = append(cp.Timeline, AIAnalysisEntry(time.Now()))
	cp.AISolution.Steps[0].En = "changed"
	*cp.AdminNotes = "changed"

	assert.Equal(t, "a", original.Attachments[0])
	assert.Len(t, original.Timeline, 1)
	assert.Equal(t, "one", original.AISolution.Steps[0].En)
	assert.Equal(t, "internal", *original.AdminNotes)
}

func TestDefaultAuthorName(t *testing.T) {
	assert.Equal(t, "Admin", DefaultAuthorName(true))
	assert.Equal(t, "User", DefaultAuthorName(false))
}
