package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserFromLoginDefaults(t *testing.T) {
	user := UserFromLogin("a@b.com", &LoginResponse{AccessToken: "t1", UserID: 7})

	assert.Equal(t, User{ID: 7, Email: "a@b.com", Name: "User", Username: "a"}, user)
}

func TestUserFromLoginKeepsBackendValues(t *testing.T) {
	user := UserFromLogin("jane@example.com", &LoginResponse{UserID: 3, Name: "Jane", Username: "jdoe"})

	assert.Equal(t, "Jane", user.Name)
	assert.Equal(t, "jdoe", user.Username)
}

func TestEmailLocalPart(t *testing.T) {
	assert.Equal(t, "bob", EmailLocalPart("bob@x.io"))
	assert.Equal(t, "no-at-sign", EmailLocalPart("no-at-sign"))
	assert.Equal(t, "", EmailLocalPart("@x.io"))
}

func TestSendMessageRequestFieldName(t *testing.T) {
	raw, err := json.Marshal(SendMessageRequest{Message: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"hi"}`, string(raw))
}

func TestCharacterInputOmitsUnsetFields(t *testing.T) {
	raw, err := json.Marshal(CharacterInput{Name: String("Ada")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ada"}`, string(raw))
}

func TestCharacterNullableFields(t *testing.T) {
	var c Character
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"Ada","profession":null,"owner_id":4,"is_personal_character":true,"personality_traits":["curious","kind"]}`), &c))

	assert.Nil(t, c.Profession)
	require.NotNil(t, c.OwnerID)
	assert.EqualValues(t, 4, *c.OwnerID)
	assert.Equal(t, []string{"curious", "kind"}, c.PersonalityTraits)
	assert.Equal(t, "", StringValue(c.Description))
}

func TestTimestampLayouts(t *testing.T) {
	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"role":"user","content":"hi","created_at":"2024-05-01T10:30:00.123456"}`), &m))
	assert.Equal(t, 2024, m.CreatedAt.Year())
	assert.Equal(t, 10, m.CreatedAt.Hour())

	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"role":"assistant","content":"yo","created_at":"2024-05-01T10:30:00Z"}`), &m))
	assert.Equal(t, RoleAssistant, m.Role)
	assert.True(t, m.Role.Valid())

	assert.Error(t, json.Unmarshal([]byte(`{"created_at":"yesterday"}`), &m))
}
