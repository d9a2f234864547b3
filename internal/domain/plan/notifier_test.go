package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeNotifier_PublishReachesTopicSubscribers(t *testing.T) {
	n := NewChangeNotifier()

	var cycleSignals, recordSignals int
	n.Subscribe(TopicCycles, func() { cycleSignals++ })
	n.Subscribe(TopicCycles, func() { cycleSignals++ })
	n.Subscribe(TopicDayRecords, func() { recordSignals++ })

	n.Publish(TopicCycles)
	assert.Equal(t, 2, cycleSignals)
	assert.Equal(t, 0, recordSignals)

	n.Publish(TopicDayRecords)
	assert.Equal(t, 1, recordSignals)
}

func TestChangeNotifier_NilIsNoOpPublisher(t *testing.T) {
	var n *ChangeNotifier
	assert.NotPanics(t, func() { n.Publish(TopicCycles) })
}

func TestChangeNotifier_SubscriberMayResubscribe(t *testing.T) {
	n := NewChangeNotifier()

	var calls int
	n.Subscribe(TopicCycles, func() {
		calls++
		if calls == 1 {
			n.Subscribe(TopicCycles, func() { calls += 10 })
		}
	})

	// The new subscriber must not fire for the publish that registered it.
	n.Publish(TopicCycles)
	assert.Equal(t, 1, calls)

	n.Publish(TopicCycles)
	assert.Equal(t, 12, calls)
}
