// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package event

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const EventQueueSize = 20

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

// Subscriber receives events from the bus. Close must be safe to call more
// than once.
type Subscriber interface {
	Deliver(Event) error
	Close()
}

type EventBus struct {
	subscribers map[EventType]map[EventSubscriberId]Subscriber
	metrics     *eventMetrics
	logger      *slog.Logger
	lastSubId   EventSubscriberId
	mu          sync.RWMutex
}

// NewEventBus creates an EventBus. Metrics are registered when promRegistry is
// not nil.
func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
) *EventBus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &EventBus{
		subscribers: make(map[EventType]map[EventSubscriberId]Subscriber),
		logger:      logger,
	}
	if promRegistry != nil {
		e.metrics = newEventMetrics(promRegistry)
	}
	return e
}

// channelSubscriber delivers events on a buffered channel. A full channel
// blocks the publisher.
type channelSubscriber struct {
	ch     chan Event
	mu     sync.RWMutex
	closed bool
}

func (c *channelSubscriber) Deliver(evt Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	c.ch <- evt
	return nil
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

func subscriberKind(sub Subscriber) string {
	if _, ok := sub.(*channelSubscriber); ok {
		return "in-memory"
	}
	return "remote"
}

// Subscribe returns a channel receiving events of the given type
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	sub := &channelSubscriber{
		ch: make(chan Event, EventQueueSize),
	}
	subId := e.RegisterSubscriber(eventType, sub)
	return subId, sub.ch
}

// SubscribeFunc calls handlerFunc from a separate goroutine for each event of
// the given type
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	subId, evtCh := e.Subscribe(eventType)
	go func() {
		for evt := range evtCh {
			handlerFunc(evt)
		}
	}()
	return subId
}

// RegisterSubscriber adds an arbitrary Subscriber and returns its id
func (e *EventBus) RegisterSubscriber(
	eventType EventType,
	sub Subscriber,
) EventSubscriberId {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSubId++
	subId := e.lastSubId
	if _, ok := e.subscribers[eventType]; !ok {
		e.subscribers[eventType] = make(map[EventSubscriberId]Subscriber)
	}
	e.subscribers[eventType][subId] = sub
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType), subscriberKind(sub)).
			Inc()
	}
	return subId
}

// Unsubscribe removes a subscriber and closes it
func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	sub, ok := e.subscribers[eventType][subId]
	if ok {
		delete(e.subscribers[eventType], subId)
		if len(e.subscribers[eventType]) == 0 {
			delete(e.subscribers, eventType)
		}
		if e.metrics != nil {
			e.metrics.subscribers.WithLabelValues(string(eventType), subscriberKind(sub)).
				Dec()
		}
	}
	e.mu.Unlock()
	if ok {
		sub.Close()
	}
}

// Publish delivers an event to all subscribers of its type. A subscriber that
// fails or panics is removed.
func (e *EventBus) Publish(eventType EventType, evt Event) {
	e.mu.RLock()
	subs := make(map[EventSubscriberId]Subscriber, len(e.subscribers[eventType]))
	for id, sub := range e.subscribers[eventType] {
		subs[id] = sub
	}
	e.mu.RUnlock()
	for id, sub := range subs {
		if err := deliver(sub, evt); err != nil {
			e.Unsubscribe(eventType, id)
			if e.metrics != nil {
				e.metrics.deliveryErrors.WithLabelValues(string(eventType), subscriberKind(sub)).
					Inc()
			}
			e.logger.Debug(
				"event delivery error",
				"component", "event",
				"type", eventType,
				"error", err,
			)
		}
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}

func deliver(sub Subscriber, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber deliver panic: %v", r)
		}
	}()
	return sub.Deliver(evt)
}

// Stop closes and removes all subscribers. The bus can be reused afterward.
func (e *EventBus) Stop() {
	e.mu.Lock()
	subs := e.subscribers
	e.subscribers = make(map[EventType]map[EventSubscriberId]Subscriber)
	e.mu.Unlock()
	for _, evtTypeSubs := range subs {
		for _, sub := range evtTypeSubs {
			sub.Close()
		}
	}
	if e.metrics != nil {
		e.metrics.subscribers.Reset()
	}
}
