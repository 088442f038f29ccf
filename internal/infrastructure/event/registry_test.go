package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptions_Matching(t *testing.T) {
	var subs subscriptions
	typed := newRecordingHandler()
	everything := newRecordingHandler()

	subs.add(everything)
	subs.add(typed, "RentPaymentApplied", "RentStatusChanged")

	handlers := subs.matching("RentPaymentApplied")
	require.Len(t, handlers, 2)
	assert.Same(t, everything, handlers[0], "handlers run in subscription order")
	assert.Same(t, typed, handlers[1])

	assert.Len(t, subs.matching("TenantCreated"), 1)
	assert.Equal(t, 2, subs.len())
}

func TestSubscriptions_AddTwiceDeliversOnce(t *testing.T) {
	var subs subscriptions
	h := newRecordingHandler()

	subs.add(h, "RentRolledOver")
	subs.add(h, "RentRolledOver", "TenantArchived")

	assert.Len(t, subs.matching("RentRolledOver"), 1)
	assert.Len(t, subs.matching("TenantArchived"), 1)
	assert.Empty(t, subs.matching("PaymentRecorded"))
	assert.Equal(t, 1, subs.len())

	subs.add(h)
	assert.Len(t, subs.matching("PaymentRecorded"), 1, "an untyped subscribe widens to every event")
}

func TestSubscriptions_Remove(t *testing.T) {
	var subs subscriptions
	a := newRecordingHandler()
	b := newRecordingHandler()

	subs.add(a, "RentRolledOver")
	subs.add(b, "RentRolledOver")
	subs.remove(a)

	handlers := subs.matching("RentRolledOver")
	require.Len(t, handlers, 1)
	assert.Same(t, b, handlers[0])

	subs.remove(b)
	assert.Empty(t, subs.matching("RentRolledOver"))
	assert.Equal(t, 0, subs.len())
}
