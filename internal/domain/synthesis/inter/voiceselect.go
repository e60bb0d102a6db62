package inter

import "strings"

// SelectVoice picks the platform voice for a profile. Preference order:
//
//  1. language and gender match, higher-quality voices first
//  2. any gendered voice in the requested language
//  3. any gendered voice in the default language
//
// Voices whose names read as gender-neutral are excluded outright; the
// platform synthesizer rejects them for this feature.
func SelectVoice(voices []VoiceInfo, profile VoiceProfile, defaultLanguage string) (VoiceInfo, bool) {
	gendered := make([]VoiceInfo, 0, len(voices))
	for _, v := range voices {
		if !isNeutralVoice(v) {
			gendered = append(gendered, v)
		}
	}

	var inLanguage []VoiceInfo
	for _, v := range gendered {
		if languageMatches(v.Language, profile.LanguageCode) {
			inLanguage = append(inLanguage, v)
		}
	}

	var matched []VoiceInfo
	for _, v := range inLanguage {
		if strings.EqualFold(v.Gender, profile.Gender) {
			matched = append(matched, v)
		}
	}

	if len(matched) > 0 {
		return pickBest(matched), true
	}
	if len(inLanguage) > 0 {
		return pickBest(inLanguage), true
	}

	var inDefault []VoiceInfo
	for _, v := range gendered {
		if languageMatches(v.Language, defaultLanguage) {
			inDefault = append(inDefault, v)
		}
	}
	if len(inDefault) > 0 {
		return pickBest(inDefault), true
	}

	return VoiceInfo{}, false
}

// pickBest prefers enhanced/neural voices over standard ones.
func pickBest(candidates []VoiceInfo) VoiceInfo {
	for _, v := range candidates {
		if isEnhancedVoice(v) {
			return v
		}
	}
	return candidates[0]
}

func isEnhancedVoice(v VoiceInfo) bool {
	id := strings.ToLower(v.ID + " " + v.Name)
	return strings.Contains(id, "neural") ||
		strings.Contains(id, "enhanced") ||
		strings.Contains(id, "premium")
}

func isNeutralVoice(v VoiceInfo) bool {
	if strings.EqualFold(v.Gender, "neutral") {
		return true
	}
	name := strings.ToLower(v.ID + " " + v.Name)
	return strings.Contains(name, "neutral")
}

// languageMatches accepts an exact locale match or a shared base language
// ("en" matches "en-US").
func languageMatches(voiceLanguage, want string) bool {
	if want == "" {
		return false
	}
	if strings.EqualFold(voiceLanguage, want) {
		return true
	}
	return strings.EqualFold(baseLanguage(voiceLanguage), baseLanguage(want))
}

func baseLanguage(code string) string {
	if i := strings.IndexAny(code, "-_"); i > 0 {
		return code[:i]
	}
	return code
}
