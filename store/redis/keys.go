package redis

// Key prefixes for primary entity storage.
const (
	prefixState       = "hookbridge:state:" // + room + ":" + eventType + ":" + stateKey
	prefixAccountData = "hookbridge:acct:"  // + room + ":" + eventType
)

// Key prefixes for set indexes.
const (
	sRooms     = "hookbridge:s:rooms"
	sStateKeys = "hookbridge:s:state:" // + room + ":" + eventType
)

// Key prefix for the per-hook recent webhook list.
const lWebhooks = "hookbridge:l:webhooks:" // + hook ID

func stateKeyFor(roomID, eventType, stateKey string) string {
	return prefixState + roomID + ":" + eventType + ":" + stateKey
}

func stateSetKey(roomID, eventType string) string {
	return sStateKeys + roomID + ":" + eventType
}

func accountDataKey(roomID, eventType string) string {
	return prefixAccountData + roomID + ":" + eventType
}

func webhookListKey(hookID string) string {
	return lWebhooks + hookID
}
