package orders

import (
	"time"

	"github.com/junaidrashid-git/pawshop-api/models"
)

// progression is the fulfillment order; cancelled sits outside it.
var progression = []models.OrderStatus{
	models.OrderStatusPending,
	models.OrderStatusProcessing,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
}

type step struct {
	label string
	note  string
}

var steps = map[models.OrderStatus]step{
	models.OrderStatusPending:    {"Order Placed", "Order placed successfully"},
	models.OrderStatusProcessing: {"Processing", "Order is being processed"},
	models.OrderStatusShipped:    {"Shipped", "Order has been shipped"},
	models.OrderStatusDelivered:  {"Delivered", "Order has been delivered"},
	models.OrderStatusCancelled:  {"Cancelled", "Order was cancelled"},
}

// Milestone is one checkpoint of an order's progress. Approximate is set when no
// history row exists for the status and the order's creation time stands in.
type Milestone struct {
	Status      models.OrderStatus `json:"status"`
	Label       string             `json:"label"`
	Timestamp   time.Time          `json:"timestamp"`
	Note        string             `json:"note"`
	Approximate bool               `json:"approximate"`
}

// Rank is the position of status in the fulfillment progression, or -1 for
// cancelled and unknown statuses.
func Rank(status models.OrderStatus) int {
	for i, s := range progression {
		if s == status {
			return i
		}
	}
	return -1
}

// ParseStatus accepts any of the five known statuses.
func ParseStatus(raw string) (models.OrderStatus, error) {
	status := models.OrderStatus(raw)
	if _, ok := steps[status]; !ok {
		return "", ErrUnknownStatus
	}
	return status, nil
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.OrderStatus) bool {
	return status == models.OrderStatusDelivered || status == models.OrderStatusCancelled
}

// CanTransition reports whether an order may move from one status to another:
// forward along the progression, or to cancelled from pending or processing.
func CanTransition(from, to models.OrderStatus) bool {
	if IsTerminal(from) || from == to {
		return false
	}
	if to == models.OrderStatusCancelled {
		return from == models.OrderStatusPending || from == models.OrderStatusProcessing
	}
	fromRank, toRank := Rank(from), Rank(to)
	return fromRank >= 0 && toRank > fromRank
}

// StatusTimeline rebuilds the milestones an order has passed, oldest first. Every
// progression step up to the current status is included. A cancelled order keeps the
// steps it reached before cancellation (per history, pending at least) and ends with
// a cancelled entry.
func StatusTimeline(order models.Order, history []models.OrderStatusHistory) []Milestone {
	firstSeen := make(map[models.OrderStatus]models.OrderStatusHistory, len(history))
	for _, h := range history {
		prev, ok := firstSeen[h.Status]
		if !ok || h.CreatedAt.Before(prev.CreatedAt) {
			firstSeen[h.Status] = h
		}
	}

	reached := Rank(order.Status)
	if order.Status == models.OrderStatusCancelled {
		reached = 0
		for _, h := range history {
			if r := Rank(h.Status); r > reached {
				reached = r
			}
		}
	}
	if reached < 0 {
		reached = 0
	}

	out := make([]Milestone, 0, reached+2)
	for _, status := range progression[:reached+1] {
		out = append(out, milestone(order, status, firstSeen))
	}
	if order.Status == models.OrderStatusCancelled {
		out = append(out, milestone(order, models.OrderStatusCancelled, firstSeen))
	}
	return out
}

func milestone(order models.Order, status models.OrderStatus, seen map[models.OrderStatus]models.OrderStatusHistory) Milestone {
	st := steps[status]
	m := Milestone{
		Status:      status,
		Label:       st.label,
		Timestamp:   order.CreatedAt,
		Note:        st.note,
		Approximate: true,
	}
	if h, ok := seen[status]; ok {
		m.Timestamp = h.CreatedAt
		m.Approximate = false
		if h.Notes != "" {
			m.Note = h.Notes
		}
	}
	return m
}
