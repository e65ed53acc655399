package screen

import "sync"

type NotificationName string

const (
	KeyboardWillShow NotificationName = "keyboard-will-show"
	KeyboardDidShow  NotificationName = "keyboard-did-show"
	KeyboardWillHide NotificationName = "keyboard-will-hide"
)

// Rect is a frame in layout points.
type Rect struct {
	X, Y, Width, Height float64
}

type Notification struct {
	Name          NotificationName
	KeyboardFrame Rect
}

// NotificationCenter fans posted notifications out to observers. Handlers
// run synchronously on the posting goroutine.
type NotificationCenter struct {
	mu        sync.Mutex
	nextID    int
	observers map[NotificationName]map[int]func(Notification)
}

func NewNotificationCenter() *NotificationCenter {
	return &NotificationCenter{observers: make(map[NotificationName]map[int]func(Notification))}
}

// Observe registers fn until the returned registration is released.
func (c *NotificationCenter) Observe(name NotificationName, fn func(Notification)) *Registration {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	if c.observers[name] == nil {
		c.observers[name] = make(map[int]func(Notification))
	}
	c.observers[name][c.nextID] = fn
	return &Registration{center: c, name: name, id: c.nextID}
}

func (c *NotificationCenter) Post(n Notification) {
	c.mu.Lock()
	handlers := make([]func(Notification), 0, len(c.observers[n.Name]))
	for _, fn := range c.observers[n.Name] {
		handlers = append(handlers, fn)
	}
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(n)
	}
}

// ObserverCount returns how many observers are registered for name.
func (c *NotificationCenter) ObserverCount(name NotificationName) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.observers[name])
}

// Registration is one observer. Release is idempotent.
type Registration struct {
	center *NotificationCenter
	name   NotificationName
	id     int
	once   sync.Once
}

func (r *Registration) Release() {
	r.once.Do(func() {
		r.center.mu.Lock()
		defer r.center.mu.Unlock()
		delete(r.center.observers[r.name], r.id)
		if len(r.center.observers[r.name]) == 0 {
			delete(r.center.observers, r.name)
		}
	})
}
