package domain

import "time"

// CommandContext identifies where a chat command came from and where replies go.
type CommandContext struct {
	Room        string
	RoomName    string
	Sender      string
	IsGroupChat bool
	Message     string
	Source      string
	Timestamp   time.Time

	// Reply overrides where command output goes (the HTTP chat endpoint collects it).
	Reply func(message string) error
}

func NewCommandContext(room, roomName, sender, message string, isGroupChat bool) *CommandContext {
	return &CommandContext{
		Room:        room,
		RoomName:    roomName,
		Sender:      sender,
		IsGroupChat: isGroupChat,
		Message:     message,
		Source:      "kakao",
		Timestamp:   time.Now(),
	}
}
