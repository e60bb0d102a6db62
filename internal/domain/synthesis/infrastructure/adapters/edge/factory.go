package edge

import (
	"carevoice/internal/domain/synthesis/inter"
	"carevoice/internal/platform/logging"
)

// Config holds platform voice settings.
type Config struct {
	DefaultLanguage string `json:"default_language" yaml:"default_language"`
}

// defaultVoices lists the Edge neural voices the portal offers. The gender
// and language fields feed voice selection.
var defaultVoices = []inter.VoiceInfo{
	{ID: "en-US-AriaNeural", Name: "Aria", Language: "en-US", Gender: "Female"},
	{ID: "en-US-JennyNeural", Name: "Jenny", Language: "en-US", Gender: "Female"},
	{ID: "en-US-GuyNeural", Name: "Guy", Language: "en-US", Gender: "Male"},
	{ID: "en-US-ChristopherNeural", Name: "Christopher", Language: "en-US", Gender: "Male"},
	{ID: "en-GB-SoniaNeural", Name: "Sonia", Language: "en-GB", Gender: "Female"},
	{ID: "en-GB-RyanNeural", Name: "Ryan", Language: "en-GB", Gender: "Male"},
	{ID: "es-ES-ElviraNeural", Name: "Elvira", Language: "es-ES", Gender: "Female"},
	{ID: "es-ES-AlvaroNeural", Name: "Alvaro", Language: "es-ES", Gender: "Male"},
	{ID: "fr-FR-DeniseNeural", Name: "Denise", Language: "fr-FR", Gender: "Female"},
	{ID: "fr-FR-HenriNeural", Name: "Henri", Language: "fr-FR", Gender: "Male"},
	{ID: "zh-CN-XiaoxiaoNeural", Name: "Xiaoxiao", Language: "zh-CN", Gender: "Female"},
	{ID: "zh-CN-YunxiNeural", Name: "Yunxi", Language: "zh-CN", Gender: "Male"},
}

// NewSynthesizer creates the platform-native synthesis strategy.
func NewSynthesizer(cfg Config, logger *logging.Logger) *Synthesizer {
	if logger == nil {
		logger = logging.Default
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en-US"
	}

	return &Synthesizer{
		cfg:    cfg,
		voices: defaultVoices,
		logger: logger,
	}
}
