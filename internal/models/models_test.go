package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListRoundTrip(t *testing.T) {
	v, err := StringList{"AC", "GPS"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["AC","GPS"]`, v)

	var l StringList
	require.NoError(t, l.Scan([]byte(`["AC","GPS"]`)))
	assert.Equal(t, StringList{"AC", "GPS"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)

	nilValue, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", nilValue)

	assert.Error(t, l.Scan(42))
}

func TestBookingPredecessors(t *testing.T) {
	assert.Equal(t, []string{BookingPending}, BookingPredecessors(BookingConfirmed))
	assert.ElementsMatch(t,
		[]string{BookingPending, BookingConfirmed, BookingCancelled},
		BookingPredecessors(BookingCancelled))
	assert.Nil(t, BookingPredecessors(BookingPending))
}

func TestVehicleBookable(t *testing.T) {
	v := Vehicle{IsActive: true, AvailabilityStatus: true}
	assert.True(t, v.Bookable())
	v.AvailabilityStatus = false
	assert.False(t, v.Bookable())
	v = Vehicle{IsActive: false, AvailabilityStatus: true}
	assert.False(t, v.Bookable())
}

func TestStatusValidators(t *testing.T) {
	assert.True(t, IsValidBookingStatus("active"))
	assert.False(t, IsValidBookingStatus("lost"))
	assert.True(t, IsValidPaymentStatus("refunded"))
	assert.False(t, IsValidPaymentStatus(""))
	assert.True(t, IsValidConversationStatus("escalated"))
	assert.True(t, IsValidSenderType("ai"))
	assert.False(t, IsValidSenderType("bot"))
	assert.True(t, IsValidRole("admin"))
}
