package ws

const (
	// client - server
	MsgSubscribe   = "subscribe"
	MsgUnsubscribe = "unsubscribe"
	MsgPing        = "ping"

	// server - client
	MsgReady    = "ready"
	MsgSnapshot = "snapshot"
	MsgUpdate   = "update"
	MsgPong     = "pong"
	MsgError    = "error"
)

const (
	// TopicJackpot carries the totals of the next drawing.
	TopicJackpot = "jackpot"
	// TopicMyTickets carries the connected user's own ticket count.
	TopicMyTickets = "my_tickets"
)

func knownTopic(t string) bool {
	return t == TopicJackpot || t == TopicMyTickets
}
