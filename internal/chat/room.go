package chat

// RoomID maps an unordered pair of user ids onto a deterministic broadcast
// channel: sort the pair, join with "_". Both peers compute the same id
// independently, so no negotiation handshake is needed.
func RoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}
