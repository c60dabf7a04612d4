package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupervisor_reserve(t *testing.T) {
	tests := []struct {
		name          string
		sup           Supervisor
		seats         int
		wantErr       error
		wantCount     int
		wantAvailable bool
	}{
		{name: "fits", sup: Supervisor{MaxStudents: 5, IsAvailableForSupervision: true}, seats: 3, wantCount: 3, wantAvailable: true},
		{name: "fills up", sup: Supervisor{MaxStudents: 2, IsAvailableForSupervision: true}, seats: 2, wantCount: 2},
		{
			name: "over capacity", sup: Supervisor{MaxStudents: 4, CurrentStudentCount: 3, IsAvailableForSupervision: true},
			seats: 2, wantErr: ErrCapacityExceeded, wantCount: 3, wantAvailable: true,
		},
		{name: "full", sup: Supervisor{MaxStudents: 2, CurrentStudentCount: 2}, seats: 1, wantErr: ErrCapacityExceeded, wantCount: 2},
		{name: "switched off", sup: Supervisor{MaxStudents: 5}, seats: 1, wantErr: ErrUnavailable},
		{name: "no seats", sup: Supervisor{MaxStudents: 5, IsAvailableForSupervision: true}, seats: 0, wantErr: ErrInvalidSeats, wantAvailable: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sup := tt.sup
			err := sup.reserve(tt.seats)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.wantCount, sup.CurrentStudentCount)
			assert.Equal(t, tt.wantAvailable, sup.IsAvailableForSupervision)
		})
	}
}

func TestSupervisor_release(t *testing.T) {
	sup := Supervisor{MaxStudents: 3, CurrentStudentCount: 3}

	sup.release(2)
	assert.Equal(t, 1, sup.CurrentStudentCount)
	assert.True(t, sup.IsAvailableForSupervision)

	// releasing the same group again floors at 0
	sup.release(2)
	assert.Equal(t, 0, sup.CurrentStudentCount)
	sup.release(2)
	assert.Equal(t, 0, sup.CurrentStudentCount)
	assert.True(t, sup.IsAvailableForSupervision)
}

func TestSupervisor_setAvailability(t *testing.T) {
	intPtr := func(i int) *int { return &i }

	tests := []struct {
		name          string
		sup           Supervisor
		available     bool
		newMax        *int
		wantErr       error
		wantMax       int
		wantAvailable bool
	}{
		{name: "switch on with slack", sup: Supervisor{MaxStudents: 3, CurrentStudentCount: 1}, available: true, wantMax: 3, wantAvailable: true},
		{name: "switch off", sup: Supervisor{MaxStudents: 3, IsAvailableForSupervision: true}, wantMax: 3},
		{name: "switch on when full", sup: Supervisor{MaxStudents: 2, CurrentStudentCount: 2}, available: true, wantMax: 2},
		{name: "raise max", sup: Supervisor{MaxStudents: 2, CurrentStudentCount: 2}, available: true, newMax: intPtr(4), wantMax: 4, wantAvailable: true},
		{name: "max equal to load", sup: Supervisor{MaxStudents: 5, CurrentStudentCount: 3}, available: true, newMax: intPtr(3), wantMax: 3},
		{
			name: "max below load", sup: Supervisor{MaxStudents: 5, CurrentStudentCount: 3, IsAvailableForSupervision: true},
			available: true, newMax: intPtr(2), wantErr: ErrInvalidCapacity, wantMax: 5, wantAvailable: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sup := tt.sup
			err := sup.setAvailability(tt.available, tt.newMax)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.wantMax, sup.MaxStudents)
			assert.Equal(t, tt.wantAvailable, sup.IsAvailableForSupervision)
		})
	}
}

func TestSupervisor_AvailableSlots(t *testing.T) {
	assert.Equal(t, 3, Supervisor{MaxStudents: 5, CurrentStudentCount: 2}.AvailableSlots())
	assert.Equal(t, 0, Supervisor{MaxStudents: 2, CurrentStudentCount: 2}.AvailableSlots())
}
