// Package events implements the in-process mutation event bus.
//
// Task mutations are published to a Bus after they have been persisted. Each
// live streaming connection holds a Subscription filtered to one owner id and
// drains it into a Sink. The bus is neither durable nor shared across
// processes: an event published while nobody is subscribed is discarded, and
// a client that reconnects never sees events it missed.
//
// Publishing never blocks and never fails. Each subscription has a bounded
// buffer; when a subscriber falls behind, further events for it are dropped
// rather than slowing down the publisher.
package events
