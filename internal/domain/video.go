package domain

type TranscriptSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

type Transcript struct {
	VideoID  string              `json:"video_id"`
	Language string              `json:"language"`
	Source   string              `json:"source"`
	Segments []TranscriptSegment `json:"segments"`
}

type VideoInfo struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channel_title"`
	PublishedAt  string `json:"published_at,omitempty"`
}

type VideoSummary struct {
	VideoID  string     `json:"video_id"`
	Info     *VideoInfo `json:"info,omitempty"`
	Summary  string     `json:"summary"`
	Chunks   int        `json:"chunks"`
	Context  []string   `json:"context"`
	Provider string     `json:"provider,omitempty"`
}
