package domain

// OutgoingMessage is a chat message posted by the bot.
type OutgoingMessage struct {
	// Channel is the destination channel id.
	Channel string

	// ThreadTS, when non-empty, posts the message as a thread reply.
	ThreadTS string

	// Text is the message body in chat markdown.
	Text string
}

// ThreadMessage is one message fetched from a conversation thread.
type ThreadMessage struct {
	// User is the author id ("" for bot messages).
	User string

	// Text is the message body.
	Text string

	// TS is the platform timestamp identifying the message.
	TS string
}
