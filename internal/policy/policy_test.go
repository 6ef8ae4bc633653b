package policy

import (
	"testing"

	"github.com/shenikar/civic_issue_tracker/internal/models"
	"github.com/stretchr/testify/assert"
)

var (
	admin    = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
	reporter = models.Actor{ID: "user-1", Role: models.RoleUser}
	stranger = models.Actor{ID: "user-2", Role: models.RoleUser}
	nobody   = models.Actor{}
	issue    = &models.Issue{ReportedBy: "user-1"}
)

func TestCanPerform(t *testing.T) {
	cases := []struct {
		name  string
		actor models.Actor
		op    Operation
		want  bool
	}{
		{"user creates", stranger, OpCreate, true},
		{"admin creates", admin, OpCreate, true},
		{"user reads one", stranger, OpReadOne, true},
		{"user lists", stranger, OpList, true},
		{"admin updates status", admin, OpUpdateStatus, true},
		{"reporter updates status", reporter, OpUpdateStatus, false},
		{"stranger updates status", stranger, OpUpdateStatus, false},
		{"admin deletes", admin, OpDelete, true},
		{"reporter deletes own", reporter, OpDelete, true},
		{"stranger deletes", stranger, OpDelete, false},
		{"admin views stats", admin, OpViewStats, true},
		{"user views stats", reporter, OpViewStats, false},
		{"anonymous lists", nobody, OpList, false},
		{"anonymous creates", nobody, OpCreate, false},
		{"unknown role", models.Actor{ID: "x", Role: "superuser"}, OpList, false},
		{"unknown operation", admin, Operation("purge"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanPerform(tc.actor, tc.op, issue))
		})
	}
}

func TestCanPerform_DeleteWithoutIssue(t *testing.T) {
	assert.False(t, CanPerform(reporter, OpDelete, nil))
	assert.True(t, CanPerform(admin, OpDelete, nil))
}

func TestCanPerform_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.True(t, CanPerform(reporter, OpDelete, issue))
		assert.False(t, CanPerform(stranger, OpDelete, issue))
	}
}
