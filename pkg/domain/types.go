package domain

import "time"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

type EventType string

const (
	EventView      EventType = "VIEW"
	EventClick     EventType = "CLICK"
	EventAddToCart EventType = "ADD_TO_CART"
	EventPurchase  EventType = "PURCHASE"
)

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// UserInfo is the profile cached alongside the session token.
type UserInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	CategoryID  int64   `json:"categoryId"`
	Stock       int     `json:"stock"`
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	CategoryID  int64   `json:"categoryId"`
	Stock       int     `json:"stock"`
}

type CartItem struct {
	ID        int64    `json:"id"`
	ProductID int64    `json:"productId"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// Cart is the server-supplied cart snapshot. TotalPrice is computed by the
// server and never derived locally.
type Cart struct {
	Items      []CartItem `json:"items"`
	TotalPrice float64    `json:"totalPrice"`
}

type OrderItem struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type Order struct {
	ID         int64       `json:"id"`
	Items      []OrderItem `json:"items"`
	TotalPrice float64     `json:"totalPrice"`
	Status     string      `json:"status,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// BehaviorEvent is the payload of POST /behaviors/track.
type BehaviorEvent struct {
	ProductID int64     `json:"productId"`
	EventType EventType `json:"eventType"`
	Timestamp string    `json:"timestamp"`
}

// Behavior is a recorded event as listed by the admin API.
type Behavior struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ProductID int64     `json:"productId"`
	EventType EventType `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
}

// UserInput is the admin create/update payload for users.
type UserInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
}

type TrainingJob struct {
	JobID   string `json:"jobId,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

type Notification struct {
	Visible bool             `json:"isVisible"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
}

// RouteMeta holds the static per-route access flags.
type RouteMeta struct {
	RequiresAuth  bool `json:"requiresAuth,omitempty"`
	RequiresAdmin bool `json:"requiresAdmin,omitempty"`
}
