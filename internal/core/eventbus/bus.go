package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus is an asynchronous, typed publish/subscribe bus. Publish never
// blocks: events are enqueued on a buffered channel and dispatched to
// subscribers from the goroutine running Start. When the buffer is full the
// event is dropped and OnDrop hooks fire.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	if buffer < 1 {
		buffer = 1
	}
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.notifyPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
}

// PublishCardActivated publishes EventCardActivated.
func (bus *EventBus) PublishCardActivated(p CardActivatedPayload) {
	bus.send(EventCardActivated, p)
}

// SubscribeCardActivated subscribes to EventCardActivated.
func (bus *EventBus) SubscribeCardActivated(fn func(CardActivatedPayload)) {
	bus.subscribe(EventCardActivated, func(p any) { fn(p.(CardActivatedPayload)) })
}

// PublishCommentsLoaded publishes EventCommentsLoaded.
func (bus *EventBus) PublishCommentsLoaded(p CommentsLoadedPayload) {
	bus.send(EventCommentsLoaded, p)
}

// SubscribeCommentsLoaded subscribes to EventCommentsLoaded.
func (bus *EventBus) SubscribeCommentsLoaded(fn func(CommentsLoadedPayload)) {
	bus.subscribe(EventCommentsLoaded, func(p any) { fn(p.(CommentsLoadedPayload)) })
}

// PublishCommentsLoadFailed publishes EventCommentsLoadFailed.
func (bus *EventBus) PublishCommentsLoadFailed(p CommentsLoadFailedPayload) {
	bus.send(EventCommentsLoadFailed, p)
}

// SubscribeCommentsLoadFailed subscribes to EventCommentsLoadFailed.
func (bus *EventBus) SubscribeCommentsLoadFailed(fn func(CommentsLoadFailedPayload)) {
	bus.subscribe(EventCommentsLoadFailed, func(p any) { fn(p.(CommentsLoadFailedPayload)) })
}

// PublishCommentEdited publishes EventCommentEdited.
func (bus *EventBus) PublishCommentEdited(p CommentEditedPayload) {
	bus.send(EventCommentEdited, p)
}

// SubscribeCommentEdited subscribes to EventCommentEdited.
func (bus *EventBus) SubscribeCommentEdited(fn func(CommentEditedPayload)) {
	bus.subscribe(EventCommentEdited, func(p any) { fn(p.(CommentEditedPayload)) })
}

// PublishCommentDeleted publishes EventCommentDeleted.
func (bus *EventBus) PublishCommentDeleted(p CommentDeletedPayload) {
	bus.send(EventCommentDeleted, p)
}

// SubscribeCommentDeleted subscribes to EventCommentDeleted.
func (bus *EventBus) SubscribeCommentDeleted(fn func(CommentDeletedPayload)) {
	bus.subscribe(EventCommentDeleted, func(p any) { fn(p.(CommentDeletedPayload)) })
}

// PublishCommentPosted publishes EventCommentPosted.
func (bus *EventBus) PublishCommentPosted(p CommentPostedPayload) {
	bus.send(EventCommentPosted, p)
}

// SubscribeCommentPosted subscribes to EventCommentPosted.
func (bus *EventBus) SubscribeCommentPosted(fn func(CommentPostedPayload)) {
	bus.subscribe(EventCommentPosted, func(p any) { fn(p.(CommentPostedPayload)) })
}

// PublishCommentMutationFailed publishes EventCommentMutationFailed.
func (bus *EventBus) PublishCommentMutationFailed(p CommentMutationFailedPayload) {
	bus.send(EventCommentMutationFailed, p)
}

// SubscribeCommentMutationFailed subscribes to EventCommentMutationFailed.
func (bus *EventBus) SubscribeCommentMutationFailed(fn func(CommentMutationFailedPayload)) {
	bus.subscribe(EventCommentMutationFailed, func(p any) { fn(p.(CommentMutationFailedPayload)) })
}

// PublishNotificationPublished publishes EventNotificationPublished.
func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

// SubscribeNotificationPublished subscribes to EventNotificationPublished.
func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublished, func(p any) { fn(p.(NotificationPublishedPayload)) })
}
