package model

import "time"

// AskEvent describes one handled request. It never carries the question or
// the answer text.
type AskEvent struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	RequestID     string    `gorm:"size:64;index" json:"request_id"`
	Source        string    `gorm:"size:16;not null;index" json:"source"`
	Outcome       string    `gorm:"size:48;not null;index" json:"outcome"`
	ArchiveEntry  string    `gorm:"size:255" json:"archive_entry,omitempty"`
	QuestionChars int       `json:"question_chars"`
	AnswerChars   int       `json:"answer_chars"`
	LatencyMS     int64     `json:"latency_ms"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (AskEvent) TableName() string {
	return "ask_events"
}
