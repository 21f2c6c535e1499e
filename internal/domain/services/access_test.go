package services

import (
	"testing"

	"github.com/buildtrack/buildtrack/internal/infrastructure/database/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateAccess(t *testing.T) {
	userID := uuid.New()
	member := AccessSubject{UserID: userID, Authenticated: true, Role: models.UserRoleTeamMember, IsProjectMember: true}
	outsider := AccessSubject{UserID: uuid.New(), Authenticated: true, Role: models.UserRoleTeamMember}
	anonymous := AccessSubject{}
	pm := AccessSubject{UserID: uuid.New(), Authenticated: true, Role: models.UserRolePM}
	owner := AccessSubject{UserID: uuid.New(), Authenticated: true, Role: models.UserRoleOwner}

	tests := []struct {
		name    string
		subject AccessSubject
		target  AccessTarget
		want    bool
	}{
		{"public allows anonymous", anonymous, AccessTarget{AccessLevel: models.AccessPublic}, true},
		{"project team allows member", member, AccessTarget{AccessLevel: models.AccessProjectTeam, HasProperty: true}, true},
		{"project team denies outsider", outsider, AccessTarget{AccessLevel: models.AccessProjectTeam, HasProperty: true}, false},
		{"project team without property allows any user", outsider, AccessTarget{AccessLevel: models.AccessProjectTeam}, true},
		{"project team denies anonymous", anonymous, AccessTarget{AccessLevel: models.AccessProjectTeam}, false},
		{"managers allow pm", pm, AccessTarget{AccessLevel: models.AccessProjectManagers}, true},
		{"managers allow owner", owner, AccessTarget{AccessLevel: models.AccessProjectManagers}, true},
		{"managers deny team member", member, AccessTarget{AccessLevel: models.AccessProjectManagers}, false},
		{"owners only allows owner", owner, AccessTarget{AccessLevel: models.AccessOwnersOnly}, true},
		{"owners only denies pm", pm, AccessTarget{AccessLevel: models.AccessOwnersOnly}, false},
		{"restricted allows listed user", member, AccessTarget{AccessLevel: models.AccessRestricted, AllowedUsers: []string{userID.String()}}, true},
		{"restricted allows listed role", pm, AccessTarget{AccessLevel: models.AccessRestricted, AllowedRoles: []string{"pm"}}, true},
		{"restricted denies owner not listed", owner, AccessTarget{AccessLevel: models.AccessRestricted, AllowedUsers: []string{userID.String()}}, false},
		{"restricted owner role allows owner", owner, AccessTarget{AccessLevel: models.AccessRestricted, AllowedUsers: []string{}, AllowedRoles: []string{"owner"}}, true},
		{"restricted owner role denies pm", pm, AccessTarget{AccessLevel: models.AccessRestricted, AllowedUsers: []string{}, AllowedRoles: []string{"owner"}}, false},
		{"unknown level denies", owner, AccessTarget{AccessLevel: "secret"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateAccess(tt.subject, tt.target))
		})
	}
}

func TestEvaluateAccess_Pure(t *testing.T) {
	subject := AccessSubject{UserID: uuid.New(), Authenticated: true, Role: models.UserRoleOwner}
	target := AccessTarget{AccessLevel: models.AccessRestricted, AllowedRoles: []string{"owner"}}

	first := EvaluateAccess(subject, target)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EvaluateAccess(subject, target))
	}
	assert.Equal(t, []string{"owner"}, target.AllowedRoles)
}
