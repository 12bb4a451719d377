package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSendMessage persists a chat message and delivers it.
	CommandSendMessage CommandKind = iota
	// CommandTyping signals the counterpart that the sender is typing.
	CommandTyping
	// CommandStopTyping clears a prior typing signal.
	CommandStopTyping
	// CommandTakeChat assigns the whole chat session to the sender.
	CommandTakeChat
	// CommandResolveChat marks the whole chat session resolved.
	CommandResolveChat
)

// Command represents an action requested by a client.
type Command struct {
	Kind       CommandKind
	ChatID     string
	To         Recipient
	Content    string
	CustomerID string
}
