// Package models holds the GORM table mappings. Domain types carry no ORM
// tags; each model converts to and from its domain type with ToDomain and
// FromDomain.
//
// A project is one row: its structure as columns, and its model catalog,
// unit mapping, unit status and bookings as JSON documents keyed by unit
// key. Standalone properties live in their own table ordered by position.
package models
