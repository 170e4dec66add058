package model

import "time"

// Room represents a bookable meeting room. Rooms with IsActive=false are
// kept in the catalogue but refuse new bookings.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique room name.
//  Capacity  – number of people the room holds.
//  Equipment – list of installed equipment (stored as JSON).
//  Location  – free-form building/floor description.
//  IsActive  – whether the room accepts bookings.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Room struct {
    ID        uint64    `json:"id"`         // rooms.id
    Name      string    `json:"name"`       // rooms.name
    Capacity  uint32    `json:"capacity"`   // rooms.capacity
    Equipment []string  `json:"equipment"`  // rooms.equipment (JSON column)
    Location  string    `json:"location"`   // rooms.location
    IsActive  bool      `json:"is_active"`  // rooms.is_active
    CreatedAt time.Time `json:"created_at"` // rooms.created_at
    UpdatedAt time.Time `json:"updated_at"` // rooms.updated_at
}
