package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/queueease/events"
	"github.com/yeremiapane/queueease/utils"
)

// Event types
const (
	EventQueueCreate     = "queue_create"
	EventQueueUpdate     = "queue_update"
	EventTableUpdate     = "table_update"
	EventTableCreate     = "table_create"
	EventTableDelete     = "table_delete"
	EventOrderUpdate     = "order_update"
	EventDashboardUpdate = "dashboard_update"
)

const writeWait = 5 * time.Second

type Message struct {
	Event        string      `json:"event"`
	RestaurantID uint        `json:"restaurantId"`
	Data         interface{} `json:"data"`
}

// FloorHub menampung koneksi dashboard staff per restoran.
type FloorHub struct {
	clients map[*websocket.Conn]uint // conn -> restaurant id
	mutex   sync.Mutex
}

var floorHub = FloorHub{
	clients: make(map[*websocket.Conn]uint),
}

// RegisterClient -> menambahkan connection untuk satu restoran
func RegisterClient(conn *websocket.Conn, restaurantID uint) {
	floorHub.mutex.Lock()
	defer floorHub.mutex.Unlock()
	floorHub.clients[conn] = restaurantID
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	floorHub.mutex.Lock()
	defer floorHub.mutex.Unlock()
	delete(floorHub.clients, conn)
	conn.Close()
}

func ClientCount() int {
	floorHub.mutex.Lock()
	defer floorHub.mutex.Unlock()
	return len(floorHub.clients)
}

// ConnectedRestaurants -> restoran yang sedang punya dashboard terbuka
func ConnectedRestaurants() []uint {
	floorHub.mutex.Lock()
	defer floorHub.mutex.Unlock()
	seen := make(map[uint]bool)
	ids := []uint{}
	for _, id := range floorHub.clients {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// BroadcastTableUpdate -> update status meja
func BroadcastTableUpdate(restaurantID uint, table interface{}) {
	broadcast(Message{Event: EventTableUpdate, RestaurantID: restaurantID, Data: table})
}

// BroadcastMessage -> broadcast pesan umum
func BroadcastMessage(msg Message) {
	broadcast(msg)
}

// broadcast -> kirim ke client milik restoran yang sama, client yang gagal dilepas
func broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling message: %v", err)
		return
	}

	floorHub.mutex.Lock()
	defer floorHub.mutex.Unlock()

	for conn, restaurantID := range floorHub.clients {
		if restaurantID != msg.RestaurantID {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to dashboard client: %v", msg.Event, err)
			delete(floorHub.clients, conn)
			conn.Close()
		}
	}
}

// Publisher meneruskan domain event ke dashboard sebagai pesan websocket.
type Publisher struct{}

func (Publisher) Publish(_ context.Context, ev events.Event) error {
	name := EventDashboardUpdate
	switch ev.Type {
	case events.TableStatusChanged:
		// bentuk pesan sama dengan CRUD meja: data = meja
		BroadcastTableUpdate(ev.RestaurantID, ev.Payload)
		return nil
	case events.QueueCreated:
		name = EventQueueCreate
	case events.QueueStatusChanged:
		name = EventQueueUpdate
	case events.OrderPlaced, events.OrderStatusChanged:
		name = EventOrderUpdate
	}
	broadcast(Message{Event: name, RestaurantID: ev.RestaurantID, Data: ev})
	return nil
}
