package inter

import "testing"

var testVoices = []VoiceInfo{
	{ID: "en-US-AriaNeural", Name: "Aria", Language: "en-US", Gender: "Female"},
	{ID: "en-US-GuyNeural", Name: "Guy", Language: "en-US", Gender: "Male"},
	{ID: "en-US-Standard-A", Name: "Standard A", Language: "en-US", Gender: "Female"},
	{ID: "en-GB-LibbyNeural", Name: "Libby", Language: "en-GB", Gender: "Female"},
	{ID: "es-ES-ElviraNeural", Name: "Elvira", Language: "es-ES", Gender: "Female"},
	{ID: "en-US-Journey-O", Name: "Journey", Language: "en-US", Gender: "Neutral"},
}

func TestSelectVoice(t *testing.T) {
	tests := []struct {
		name    string
		profile VoiceProfile
		wantID  string
	}{
		{
			name:    "gender and language match prefers neural",
			profile: VoiceProfile{Gender: "female", LanguageCode: "en-US"},
			wantID:  "en-US-AriaNeural",
		},
		{
			name:    "male match",
			profile: VoiceProfile{Gender: "male", LanguageCode: "en-US"},
			wantID:  "en-US-GuyNeural",
		},
		{
			name:    "no gendered match falls back to any voice in language",
			profile: VoiceProfile{Gender: "male", LanguageCode: "es-ES"},
			wantID:  "es-ES-ElviraNeural",
		},
		{
			name:    "base language match",
			profile: VoiceProfile{Gender: "female", LanguageCode: "en"},
			wantID:  "en-US-AriaNeural",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectVoice(testVoices, tt.profile, "en-US")
			if !ok {
				t.Fatalf("expected a voice")
			}
			if got.ID != tt.wantID {
				t.Errorf("SelectVoice() = %s, want %s", got.ID, tt.wantID)
			}
		})
	}
}

func TestSelectVoiceDefaultLanguageFallback(t *testing.T) {
	got, ok := SelectVoice(testVoices, VoiceProfile{Gender: "female", LanguageCode: "fr-FR"}, "en-US")
	if !ok {
		t.Fatalf("expected default-language fallback")
	}
	if got.Language != "en-US" {
		t.Errorf("expected en-US fallback, got %s", got.Language)
	}
}

func TestSelectVoiceExcludesNeutral(t *testing.T) {
	onlyNeutral := []VoiceInfo{
		{ID: "en-US-Journey-O", Name: "Journey", Language: "en-US", Gender: "Neutral"},
	}
	if _, ok := SelectVoice(onlyNeutral, VoiceProfile{Gender: "female", LanguageCode: "en-US"}, "en-US"); ok {
		t.Errorf("neutral voices must never be selected")
	}

	// neutral voices are skipped even when they are the only language match
	got, ok := SelectVoice(testVoices, VoiceProfile{Gender: "female", LanguageCode: "en-US"}, "en-US")
	if !ok || got.Gender == "Neutral" {
		t.Errorf("neutral voice selected: %+v", got)
	}
}

func TestSelectVoiceEmptyList(t *testing.T) {
	if _, ok := SelectVoice(nil, VoiceProfile{Gender: "female", LanguageCode: "en-US"}, "en-US"); ok {
		t.Errorf("expected no voice from empty list")
	}
}
