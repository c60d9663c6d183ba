package domain

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
)

type SentimentReply struct {
	Text     string    `json:"text"`
	Label    Sentiment `json:"label"`
	RawLabel string    `json:"raw_label"`
	Reply    string    `json:"reply"`
}
