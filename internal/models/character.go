package models

// Character is an AI persona. Nullable backend fields are pointers or nil slices.
type Character struct {
	ID                  uint     `json:"id"`
	Name                string   `json:"name"`
	Nationality         *string  `json:"nationality"`
	Profession          *string  `json:"profession"`
	Description         *string  `json:"description"`
	ImageURL            *string  `json:"image_url"`
	Background          *string  `json:"background"`
	PersonalityTraits   []string `json:"personality_traits"`
	Motivations         *string  `json:"motivations"`
	QuirksHabits        []string `json:"quirks_habits"`
	ExampleSentences    []string `json:"example_sentences"`
	IsPersonalCharacter bool     `json:"is_personal_character"`
	OwnerID             *uint    `json:"owner_id"`
}

// CharacterInput is a partial Character for create and update calls.
// Only the fields that are set are sent.
type CharacterInput struct {
	Name                *string  `json:"name,omitempty"`
	Nationality         *string  `json:"nationality,omitempty"`
	Profession          *string  `json:"profession,omitempty"`
	Description         *string  `json:"description,omitempty"`
	ImageURL            *string  `json:"image_url,omitempty"`
	Background          *string  `json:"background,omitempty"`
	PersonalityTraits   []string `json:"personality_traits,omitempty"`
	Motivations         *string  `json:"motivations,omitempty"`
	QuirksHabits        []string `json:"quirks_habits,omitempty"`
	ExampleSentences    []string `json:"example_sentences,omitempty"`
	IsPersonalCharacter *bool    `json:"is_personal_character,omitempty"`
}

// UpdateAvatarRequest is the body for PATCH /characters/{id}/avatar
type UpdateAvatarRequest struct {
	ImageURL string `json:"image_url"`
}

// GenerateCharacterRequest is the body for POST /characters/ai-generate
type GenerateCharacterRequest struct {
	Details string `json:"details"`
}

// StringValue dereferences an optional string field
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// String returns a pointer to s, for building CharacterInput values
func String(s string) *string {
	return &s
}
