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

package event_test

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiny-spl/tinyspl/event"
	"go.uber.org/goleak"
)

const testEvtType event.EventType = "test.event"

func TestEventBusSingleSubscriber(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(event.NewEvent(testEvtType, 999))
	select {
	case evt, ok := <-subCh:
		require.True(t, ok, "event channel closed unexpectedly")
		assert.Equal(t, testEvtType, evt.Type)
		assert.Equal(t, 999, evt.Data)
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for event")
	}
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	_, otherCh := eb.Subscribe("other.event")
	eb.Publish(event.NewEvent(testEvtType, 999))
	for _, ch := range []<-chan event.Event{sub1Ch, sub2Ch} {
		select {
		case evt := <-ch:
			assert.Equal(t, 999, evt.Data)
		case <-time.After(1 * time.Second):
			t.Fatalf("timeout waiting for event")
		}
	}
	select {
	case evt := <-otherCh:
		t.Fatalf("received event for another type: %v", evt)
	default:
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(event.NewEvent(testEvtType, 999))
	_, ok := <-subCh
	assert.False(t, ok, "subscriber channel was not closed after Unsubscribe")
}

func TestEventBusSubscribeFunc(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	var got atomic.Int64
	done := make(chan struct{})
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		if got.Add(int64(evt.Data.(int))) == 6 {
			close(done)
		}
	})
	for i := 1; i <= 3; i++ {
		eb.Publish(event.NewEvent(testEvtType, i))
	}
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for handler")
	}
	eb.Stop()
	// Subscribing after Stop is refused
	assert.Zero(t, eb.SubscribeFunc(testEvtType, func(event.Event) {}))
}

func TestEventBusPublishAsync(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe(testEvtType)
	require.True(t, eb.PublishAsync(event.NewEvent(testEvtType, 1)))
	select {
	case evt := <-subCh:
		assert.Equal(t, 1, evt.Data)
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for async event")
	}
	eb.Stop()
	assert.False(t, eb.PublishAsync(event.NewEvent(testEvtType, 2)))
	_, ok := <-subCh
	assert.False(t, ok)
}

type failingSubscriber struct {
	closed atomic.Bool
	panics bool
}

func (f *failingSubscriber) Deliver(event.Event) error {
	if f.panics {
		panic("boom")
	}
	return errors.New("deliver failed")
}

func (f *failingSubscriber) Close() {
	f.closed.Store(true)
}

func TestDeliverFailureUnregisters(t *testing.T) {
	defer goleak.VerifyNone(t)
	registry := prometheus.NewRegistry()
	eb := event.NewEventBus(registry, nil)
	defer eb.Stop()
	for _, sub := range []*failingSubscriber{{}, {panics: true}} {
		subId := eb.RegisterSubscriber(testEvtType, sub)
		require.NotZero(t, subId)
		eb.Publish(event.NewEvent(testEvtType, "x"))
		assert.True(t, sub.closed.Load())
	}
	expected := `
# HELP event_bus_delivery_errors_total failed event deliveries by type
# TYPE event_bus_delivery_errors_total counter
event_bus_delivery_errors_total{type="test.event"} 2
`
	require.NoError(
		t,
		testutil.GatherAndCompare(
			registry,
			strings.NewReader(expected),
			"event_bus_delivery_errors_total",
		),
	)
}

func TestFullSubscriberDoesNotBlock(t *testing.T) {
	defer goleak.VerifyNone(t)
	eb := event.NewEventBus(nil, nil)
	_, subCh := eb.Subscribe(testEvtType)
	done := make(chan struct{})
	go func() {
		for i := range event.EventQueueSize * 2 {
			eb.Publish(event.NewEvent(testEvtType, i))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatalf("publish blocked on a full subscriber")
	}
	assert.Len(t, subCh, event.EventQueueSize)
	eb.Stop()
}

func TestPublishUnsubscribeRace(t *testing.T) {
	defer goleak.VerifyNone(t)
	for range 200 {
		eb := event.NewEventBus(nil, nil)
		subId, ch := eb.Subscribe(testEvtType)
		var wg sync.WaitGroup
		wg.Add(4)
		go func() {
			defer wg.Done()
			for j := range 10 {
				eb.Publish(event.NewEvent(testEvtType, j))
			}
		}()
		go func() {
			defer wg.Done()
			eb.Unsubscribe(testEvtType, subId)
			eb.Stop()
		}()
		go func() {
			defer wg.Done()
			eb.SubscribeFunc(testEvtType, func(event.Event) {})
		}()
		go func() {
			defer wg.Done()
			for range ch {
			}
		}()
		wg.Wait()
		eb.Stop()
	}
}
