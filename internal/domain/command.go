package domain

type CommandType string

const (
	CommandSearch    CommandType = "search"
	CommandWeather   CommandType = "weather"
	CommandHotels    CommandType = "hotels"
	CommandSentiment CommandType = "sentiment"
	CommandReport    CommandType = "report"
	CommandSummarize CommandType = "summarize"
	CommandHelp      CommandType = "help"
	CommandUnknown   CommandType = "unknown"
)

func (c CommandType) String() string {
	return string(c)
}

func (c CommandType) IsValid() bool {
	switch c {
	case CommandSearch, CommandWeather, CommandHotels, CommandSentiment,
		CommandReport, CommandSummarize, CommandHelp, CommandUnknown:
		return true
	default:
		return false
	}
}

// ParsedCommand is a chat message resolved into a command and its arguments.
type ParsedCommand struct {
	Type   CommandType    `json:"command"`
	Params map[string]any `json:"params"`
	Raw    string         `json:"raw"`
}
