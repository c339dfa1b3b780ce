package realtime

// Wire event names, client to server
const (
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventReportStock = "report-stock"
)

// Wire event names, server to client
const (
	EventViewerCount = "viewer-count"
	EventStockUpdate = "stock-update"
)

// ClientMessage is a message received from a connected client
type ClientMessage struct {
	Event          string `json:"event"`
	ProductID      string `json:"productId"`
	AvailableStock *int   `json:"availableStock,omitempty"`
}

// ServerMessage is a message sent to one or more connected clients
type ServerMessage struct {
	Event          string `json:"event"`
	ProductID      string `json:"productId"`
	ViewerCount    *int   `json:"viewerCount,omitempty"`
	AvailableStock *int   `json:"availableStock,omitempty"`
}

func viewerCountMessage(productID string, count int) ServerMessage {
	return ServerMessage{Event: EventViewerCount, ProductID: productID, ViewerCount: &count}
}

func stockUpdateMessage(productID string, stock int) ServerMessage {
	return ServerMessage{Event: EventStockUpdate, ProductID: productID, AvailableStock: &stock}
}
