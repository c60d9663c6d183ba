package prompt

type SentimentClassifyVars struct {
	UserText string
}

type SentimentReplyVars struct {
	Sentiment string
}

type EssayVars struct {
	Topic string
}

// FeedbackAspect names what a feedback node grades.
type FeedbackAspect string

const (
	AspectDepth     FeedbackAspect = "depth"
	AspectGrammar   FeedbackAspect = "grammar"
	AspectStructure FeedbackAspect = "structure and tone"
)

type FeedbackVars struct {
	Aspect FeedbackAspect
	Topic  string
	Essay  string
}

type OverallVars struct {
	Topic             string
	Essay             string
	DepthFeedback     string
	GrammarFeedback   string
	StructureFeedback string
	AvgScore          string
}

type VideoSummaryVars struct {
	Context  string
	Question string
}
