package prompt

import "fmt"

// Fallbacks are used when an embedded template fails to render.

func FallbackSentimentClassify(v SentimentClassifyVars) string {
	return fmt.Sprintf("Classify the sentiment of the text below. Reply with one word, positive or negative.\n\nText: %s\n\nSentiment:", v.UserText)
}

func FallbackSentimentReply(v SentimentReplyVars) string {
	return fmt.Sprintf("The user's sentiment is %s. Thank them warmly if it is positive, apologise sincerely if it is negative.", v.Sentiment)
}

func FallbackEssay(v EssayVars) string {
	return fmt.Sprintf("Write a well-structured essay with an introduction, body and conclusion on the topic %q.", v.Topic)
}

func FallbackFeedback(v FeedbackVars) string {
	return fmt.Sprintf("Grade the %s of this essay on %q out of 10.\nEssay: %s\nAnswer as JSON: {\"feedback\": \"...\", \"score\": 0}", v.Aspect, v.Topic, v.Essay)
}

func FallbackOverall(v OverallVars) string {
	return fmt.Sprintf("Summarise the evaluation of this essay on %q (average score %s) as JSON: {\"feedback\": \"...\", \"evaluation\": \"approved\" or \"not approved\"}.\nEssay: %s\nDepth: %s\nGrammar: %s\nStructure: %s",
		v.Topic, v.AvgScore, v.Essay, v.DepthFeedback, v.GrammarFeedback, v.StructureFeedback)
}

func FallbackVideoSummary(v VideoSummaryVars) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion:\n%s\n\nWrite a detailed summary of the video.", v.Context, v.Question)
}
