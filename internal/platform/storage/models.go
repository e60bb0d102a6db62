package storage

import "time"

// VoiceTurn records one round trip through the voice panel: what the user
// said, which path transcribed it, what was spoken back, and which path
// spoke it.
type VoiceTurn struct {
	ID              uint   `gorm:"primaryKey"`
	SessionID       string `gorm:"index;size:64"`
	Transcript      string
	CaptureStrategy string `gorm:"size:32"`
	Reply           string
	ReplyFallback   bool
	SpeechStrategy  string `gorm:"size:32"`
	ErrorKind       string `gorm:"size:64"`
	CreatedAt       time.Time
}

// TableName keeps the table name stable across gorm naming changes.
func (VoiceTurn) TableName() string {
	return "voice_turns"
}
