package resource

import (
	jsruntime "github.com/wippyai/js-runtime"
)

// Ref is the boundary reference type stored in engine state.
// Ref 0 is reserved and always invalid.
type Ref = jsruntime.Ref

// EventType identifies a registry lifecycle event.
type EventType uint8

const (
	EventRegistered EventType = iota
	EventReleased
)

// Event represents a registry lifecycle event.
type Event struct {
	Value any
	Ref   Ref
	Type  EventType
}

// Observer receives notifications about registry events.
type Observer interface {
	OnRegistryEvent(Event)
}
