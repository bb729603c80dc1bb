package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestBooking_Overlaps(t *testing.T) {
	b := Booking{CheckInDate: date(t, "2024-06-01"), CheckOutDate: date(t, "2024-06-05")}

	tests := []struct {
		in, out string
		want    bool
	}{
		{"2024-06-05", "2024-06-08", false}, // starts on our check-out day
		{"2024-05-28", "2024-06-01", false}, // ends on our check-in day
		{"2024-06-03", "2024-06-07", true},
		{"2024-05-30", "2024-06-02", true},
		{"2024-06-02", "2024-06-03", true},
		{"2024-05-01", "2024-07-01", true},
		{"2024-06-01", "2024-06-05", true},
		{"2024-06-10", "2024-06-12", false},
	}
	for _, tt := range tests {
		got := b.Overlaps(date(t, tt.in), date(t, tt.out))
		assert.Equal(t, tt.want, got, "%s..%s", tt.in, tt.out)
	}
}

func TestBooking_Nights(t *testing.T) {
	b := Booking{CheckInDate: date(t, "2024-03-30"), CheckOutDate: date(t, "2024-04-02")}
	assert.Equal(t, 3, b.Nights())
}

func TestBookingStatus_Transitions(t *testing.T) {
	all := []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled}
	allowed := map[[2]BookingStatus]bool{
		{BookingPending, BookingConfirmed}:   true,
		{BookingPending, BookingCancelled}:   true,
		{BookingConfirmed, BookingCancelled}: true,
	}
	for _, from := range all {
		assert.True(t, from.Valid())
		for _, to := range all {
			assert.Equal(t, allowed[[2]BookingStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.False(t, BookingStatus("archived").Valid())
}

func TestAccountStatus_Transitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusActive))
	assert.True(t, StatusPending.CanTransitionTo(StatusSuspended))
	assert.True(t, StatusActive.CanTransitionTo(StatusSuspended))
	assert.True(t, StatusSuspended.CanTransitionTo(StatusActive))

	assert.False(t, StatusActive.CanTransitionTo(StatusPending))
	assert.False(t, StatusSuspended.CanTransitionTo(StatusPending))
	assert.False(t, StatusActive.CanTransitionTo(StatusActive))
	assert.False(t, AccountStatus("banned").Valid())
}

func TestNewIdentity(t *testing.T) {
	u := User{ID: 7, Email: "a@example.com"}

	renter := NewIdentity(u, nil)
	assert.IsType(t, Renter{}, renter)
	assert.Equal(t, RoleRenter, renter.Role())
	assert.Equal(t, RenterAccountStatus, renter.AccountStatus())

	owner := NewIdentity(u, &OwnerProfile{UserID: 7, AccountStatus: StatusPending})
	o, ok := owner.(Owner)
	require.True(t, ok)
	assert.Equal(t, RoleOwner, owner.Role())
	assert.Equal(t, int64(7), owner.Account().ID)
	assert.False(t, o.IsActive())

	o.Profile.AccountStatus = StatusActive
	assert.True(t, o.IsActive())
}

func TestDates(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	d := DateOf(time.Date(2024, 6, 1, 23, 30, 0, 0, loc))
	assert.Equal(t, "2024-06-01", FormatDate(d))
	assert.Equal(t, time.UTC, d.Location())

	_, err := ParseDate("01/06/2024")
	assert.Error(t, err)
	assert.Equal(t, date(t, "2024-06-01"), date(t, " 2024-06-01 "))
}

func TestResidence_MainPhoto(t *testing.T) {
	r := &Residence{}
	_, ok := r.MainPhoto()
	assert.False(t, ok)

	r.Photos = []ResidencePhoto{{Image: "/media/a.png", Position: 0}, {Image: "/media/b.png", Position: 1}}
	p, ok := r.MainPhoto()
	require.True(t, ok)
	assert.Equal(t, "/media/a.png", p.Image)
}
