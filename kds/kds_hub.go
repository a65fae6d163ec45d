package kds

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Event types
const (
	EventNewOrder    = "new_order"
	EventOrderUpdate = "order_update"
	EventTableUpdate = "table_update"
	EventStaffNotif  = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung semua client KDS (chef, staff, admin) untuk broadcast
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient -> menambahkan connection ke set dengan role
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// HubBroadcaster adapts the hub to the order service's Broadcaster
// collaborator. Delivery is best-effort: the order has already committed by
// the time any of these run.
type HubBroadcaster struct{}

func NewHubBroadcaster() *HubBroadcaster {
	return &HubBroadcaster{}
}

func (b *HubBroadcaster) BroadcastNewOrder(order models.Order) {
	broadcast(Message{Event: EventNewOrder, Data: order})
}

func (b *HubBroadcaster) BroadcastOrderUpdate(order models.Order) {
	broadcast(Message{Event: EventOrderUpdate, Data: order})
}

func (b *HubBroadcaster) BroadcastTableUpdate(table models.Table) {
	broadcast(Message{Event: EventTableUpdate, Data: table})
}

// BroadcastStaffNotification -> notifikasi bebas untuk staff
func BroadcastStaffNotification(message string) {
	broadcast(Message{Event: EventStaffNotif, Data: message})
}

// broadcast -> kirim pesan ke semua client; error per-client hanya di-log
func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("error marshaling kds message: %v", err)
		return
	}

	for conn, role := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("error sending kds message to %s client: %v", role, err)
		}
	}
}
