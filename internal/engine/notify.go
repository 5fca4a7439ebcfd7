package engine

// NotificationCapacity bounds the notification queue; the oldest entry is dropped first.
const NotificationCapacity = 10

// Notification is a player-facing message.
type Notification struct {
	Tick  uint64 `json:"tick"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Notifications is a fixed-size ring of recent notifications.
type Notifications struct {
	items [NotificationCapacity]Notification
	start int
	count int
}

// NewNotifications returns an empty queue.
func NewNotifications() *Notifications {
	return &Notifications{}
}

// Push appends n, evicting the oldest entry when full.
func (q *Notifications) Push(n Notification) {
	if q.count < NotificationCapacity {
		q.items[(q.start+q.count)%NotificationCapacity] = n
		q.count++
		return
	}
	q.items[q.start] = n
	q.start = (q.start + 1) % NotificationCapacity
}

// All returns the queued notifications, oldest first.
func (q *Notifications) All() []Notification {
	out := make([]Notification, q.count)
	for i := range out {
		out[i] = q.items[(q.start+i)%NotificationCapacity]
	}
	return out
}

// Len returns the number of queued notifications.
func (q *Notifications) Len() int {
	return q.count
}

// Clear empties the queue.
func (q *Notifications) Clear() {
	q.start, q.count = 0, 0
}

// Notify queues a notification stamped with the current long tick.
func (c *City) Notify(title, body string) {
	c.Notifications.Push(Notification{Tick: c.Tick, Title: title, Body: body})
}
