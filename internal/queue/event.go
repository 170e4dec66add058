// Package queue defines the message payloads exchanged over RabbitMQ and
// the publisher/consumer pair that moves them.
package queue

// BookingCreatedEvent is published to the durable "bookings" queue when a
// booking is successfully admitted. It carries enough for downstream
// consumers (notifications, analytics) to act without querying the primary
// database. Timestamps are RFC3339 UTC strings.
type BookingCreatedEvent struct {
    Event     string `json:"event"` // always "booking_created"
    BookingID uint64 `json:"booking_id"`
    UserID    uint64 `json:"user_id"`
    RoomID    uint64 `json:"room_id"`
    StartTime string `json:"start_time"`
    EndTime   string `json:"end_time"`
}
