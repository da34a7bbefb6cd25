package service

// Broadcaster delivers transient events to the client's UI over the realtime
// channel (avoids an import cycle with the ws transport).
type Broadcaster interface {
	BroadcastToClient(clientID, questionnaireID string, msgType string, payload interface{})
	DisconnectClient(clientID, questionnaireID string)
}
