// Package guide implements the read-only client for the remote schedule
// source and the wire types it returns.
package guide

import (
	"fmt"
	"time"
)

// EventKind discriminates VOD assets from live interludes.
type EventKind string

const (
	KindVOD  EventKind = "VOD"
	KindLive EventKind = "LIVE"
)

// AudioTrack describes one audio rendition a channel exposes.
type AudioTrack struct {
	Language string `json:"language"`
	Name     string `json:"name"`
	Default  bool   `json:"is_default"`
}

// ChannelInfo is the roster entry as returned by GET /channels.
type ChannelInfo struct {
	ID          string       `json:"id"`
	Title       string       `json:"title,omitempty"`
	AudioTracks []AudioTrack `json:"audioTracks,omitempty"`
}

// Channel is the in-memory channel object built by the roster on every
// refresh. Instances are replaced, never mutated, when remote attributes
// change.
type Channel struct {
	ID          string
	Title       string
	ScheduleURL string
	AudioTracks []AudioTrack
	Profile     Profile
}

// Demuxed reports whether the channel declares discrete audio tracks.
func (c *Channel) Demuxed() bool {
	return len(c.AudioTracks) > 0
}

// Event is one schedule entry inside a fetched window. The source reports
// every instant twice: epoch milliseconds and an ISO-8601 string of the
// same instant. Selection logic reads only the millisecond fields.
type Event struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channelId"`
	Title     string    `json:"title"`
	StartMS   int64     `json:"start_time"`
	EndMS     int64     `json:"end_time"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	URL       string    `json:"url"`
	Duration  float64   `json:"duration"`
	Kind      EventKind `json:"type"`
	LiveURL   string    `json:"liveUrl,omitempty"`
}

// StartTime returns the event start as a time.Time.
func (e *Event) StartTime() time.Time { return time.UnixMilli(e.StartMS) }

// EndTime returns the event end as a time.Time.
func (e *Event) EndTime() time.Time { return time.UnixMilli(e.EndMS) }

// Validate checks the per-event invariant the resolver depends on.
func (e *Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event without id")
	}
	if e.StartMS >= e.EndMS {
		return fmt.Errorf("event %s: start_time %d not before end_time %d", e.ID, e.StartMS, e.EndMS)
	}
	return nil
}
