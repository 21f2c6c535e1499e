package supabase

import (
	"testing"

	supabase "github.com/nedpals/supabase-go"
	"github.com/stretchr/testify/assert"
)

func TestToIdentity(t *testing.T) {
	identity := toIdentity(&supabase.User{
		ID:    "7c1f6a0e-8f43-4d3b-9d6a-2f9b2f1c0a11",
		Email: "pm@example.com",
		UserMetadata: map[string]interface{}{
			"first_name": "Dana",
			"last_name":  "Reyes",
			"phone":      12345,
		},
	})

	assert.Equal(t, "7c1f6a0e-8f43-4d3b-9d6a-2f9b2f1c0a11", identity.Subject)
	assert.Equal(t, "pm@example.com", identity.Email)
	assert.Equal(t, "Dana", identity.FirstName)
	assert.Equal(t, "Reyes", identity.LastName)
}

func TestToIdentity_Nil(t *testing.T) {
	assert.Equal(t, "", toIdentity(nil).Subject)
	assert.Equal(t, "", metadataString(nil, "first_name"))
}
