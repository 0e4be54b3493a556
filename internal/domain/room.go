package domain

// TeamRoomKey is the single shared staff room.
const TeamRoomKey = "team_chat"

// DirectRoomKey derives the room key for a direct conversation between two
// users. The key is a pure function of the unordered pair: both participants
// resolve to the same room regardless of who opened it.
func DirectRoomKey(a, b string) string {
	lo, hi := SortedPair(a, b)
	return "dm_" + lo + "_" + hi
}

// SortedPair canonicalizes two participant ids.
func SortedPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
