package models

import "time"

// Entry is one request/response pair in a panel history.
// Input holds the question, problem or image prompt; Output holds the answer
// or solution text. Image is set only for ImageGenerator entries.
type Entry struct {
	ID        int64     `json:"id,omitempty"`
	Feature   Feature   `json:"-"`
	Input     string    `json:"input"`
	Output    string    `json:"output,omitempty"`
	Image     *Image    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Image is a decoded generation result kept in memory for the session.
type Image struct {
	ID       string `json:"id"`
	MIMEType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Data     []byte `json:"-"`
}

func (e Entry) Question() string { return e.Input }
func (e Entry) Answer() string { return e.Output }
func (e Entry) Problem() string { return e.Input }
func (e Entry) Solution() string { return e.Output }
func (e Entry) Prompt() string { return e.Input }
