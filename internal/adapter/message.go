package adapter

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/util"
)

var (
	controlCharsPattern = regexp.MustCompile(`[\x00-\x08\x0B-\x1F\x7F]`)
	datePattern         = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// MessageAdapter converts prefixed chat messages into commands
type MessageAdapter struct {
	prefix string
}

func NewMessageAdapter(prefix string) *MessageAdapter {
	if strings.TrimSpace(prefix) == "" {
		prefix = "!"
	}
	return &MessageAdapter{prefix: prefix}
}

// ParseMessage parses one chat line. Text without the prefix is unknown.
func (ma *MessageAdapter) ParseMessage(message string) *domain.ParsedCommand {
	text := strings.TrimSpace(message)
	if text == "" || !strings.HasPrefix(text, ma.prefix) {
		return ma.createUnknownCommand(text)
	}

	commandText := strings.TrimSpace(text[len(ma.prefix):])
	parts := strings.Fields(commandText)
	if len(parts) == 0 {
		return ma.createUnknownCommand(text)
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(commandText, parts[0]))

	switch {
	case ma.isHelpCommand(command):
		return &domain.ParsedCommand{Type: domain.CommandHelp, Params: map[string]any{}, Raw: text}

	case ma.isSearchCommand(command):
		return ma.textCommand(domain.CommandSearch, "query", rest, constants.AIInputLimits.MaxQueryLength, text)

	case ma.isWeatherCommand(command):
		return ma.textCommand(domain.CommandWeather, "city", rest, constants.AIInputLimits.MaxQueryLength, text)

	case ma.isHotelsCommand(command):
		return &domain.ParsedCommand{Type: domain.CommandHotels, Params: ma.parseHotelArgs(args), Raw: text}

	case ma.isSentimentCommand(command):
		return ma.textCommand(domain.CommandSentiment, "text", rest, constants.AIInputLimits.MaxTextLength, text)

	case ma.isReportCommand(command):
		return ma.textCommand(domain.CommandReport, "topic", rest, constants.AIInputLimits.MaxTopicLength, text)

	case ma.isSummarizeCommand(command):
		link := ""
		if len(args) > 0 {
			link = args[0]
		}
		return &domain.ParsedCommand{Type: domain.CommandSummarize, Params: map[string]any{"link": link}, Raw: text}
	}

	return ma.createUnknownCommand(text)
}

// Command matchers

func (ma *MessageAdapter) isHelpCommand(cmd string) bool {
	return util.Contains([]string{"도움말", "도움", "help", "명령어", "commands"}, cmd)
}

func (ma *MessageAdapter) isSearchCommand(cmd string) bool {
	return util.Contains([]string{"검색", "search", "find"}, cmd)
}

func (ma *MessageAdapter) isWeatherCommand(cmd string) bool {
	return util.Contains([]string{"날씨", "weather"}, cmd)
}

func (ma *MessageAdapter) isHotelsCommand(cmd string) bool {
	return util.Contains([]string{"호텔", "숙소", "hotel", "hotels"}, cmd)
}

func (ma *MessageAdapter) isSentimentCommand(cmd string) bool {
	return util.Contains([]string{"감정", "피드백", "sentiment", "feedback"}, cmd)
}

func (ma *MessageAdapter) isReportCommand(cmd string) bool {
	return util.Contains([]string{"리포트", "에세이", "report", "essay"}, cmd)
}

func (ma *MessageAdapter) isSummarizeCommand(cmd string) bool {
	return util.Contains([]string{"요약", "summarize", "summary", "yt"}, cmd)
}

// Argument parsers

func (ma *MessageAdapter) textCommand(cmdType domain.CommandType, key, value string, limit int, raw string) *domain.ParsedCommand {
	return &domain.ParsedCommand{
		Type:   cmdType,
		Params: map[string]any{key: ma.sanitize(value, limit)},
		Raw:    raw,
	}
}

// parseHotelArgs reads "<city words> [checkin] [checkout] [rooms] [adults]".
// The city ends at the first date token.
func (ma *MessageAdapter) parseHotelArgs(args []string) map[string]any {
	params := map[string]any{}

	cityParts := make([]string, 0, len(args))
	i := 0
	for ; i < len(args); i++ {
		if datePattern.MatchString(args[i]) {
			break
		}
		cityParts = append(cityParts, args[i])
	}
	params["city"] = ma.sanitize(strings.Join(cityParts, " "), constants.AIInputLimits.MaxQueryLength)

	dates := make([]string, 0, 2)
	for ; i < len(args) && len(dates) < 2 && datePattern.MatchString(args[i]); i++ {
		dates = append(dates, args[i])
	}
	if len(dates) > 0 {
		params["checkin"] = dates[0]
	}
	if len(dates) > 1 {
		params["checkout"] = dates[1]
	}

	counts := []string{"rooms", "adults"}
	for _, key := range counts {
		if i >= len(args) {
			break
		}
		if n, err := strconv.Atoi(args[i]); err == nil {
			params[key] = n
		}
		i++
	}
	return params
}

func (ma *MessageAdapter) createUnknownCommand(text string) *domain.ParsedCommand {
	return &domain.ParsedCommand{
		Type:   domain.CommandUnknown,
		Params: make(map[string]any),
		Raw:    text,
	}
}

func (ma *MessageAdapter) sanitize(input string, limit int) string {
	withoutControl := controlCharsPattern.ReplaceAllString(input, " ")
	normalized := strings.TrimSpace(withoutControl)
	if normalized == "" {
		return ""
	}
	if runes := []rune(normalized); len(runes) > limit {
		return string(runes[:limit])
	}
	return normalized
}
