package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
    return time.Date(2025, 1, 15, hour, min, 0, 0, time.UTC)
}

func TestIntervalValid(t *testing.T) {
    cases := []struct {
        name  string
        start time.Time
        end   time.Time
        want  bool
    }{
        {"start before end", at(9, 0), at(10, 0), true},
        {"one minute", at(9, 0), at(9, 1), true},
        {"zero length", at(9, 0), at(9, 0), false},
        {"reversed", at(10, 0), at(9, 0), false},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            iv := Interval{Start: tc.start, End: tc.end}
            assert.Equal(t, tc.want, iv.Valid())
        })
    }
}

func TestIntervalOverlaps(t *testing.T) {
    cases := []struct {
        name string
        a    Interval
        b    Interval
        want bool
    }{
        {
            name: "identical",
            a:    Interval{Start: at(9, 0), End: at(10, 0)},
            b:    Interval{Start: at(9, 0), End: at(10, 0)},
            want: true,
        },
        {
            name: "contained",
            a:    Interval{Start: at(9, 0), End: at(12, 0)},
            b:    Interval{Start: at(10, 0), End: at(11, 0)},
            want: true,
        },
        {
            name: "partial overlap",
            a:    Interval{Start: at(9, 0), End: at(10, 30)},
            b:    Interval{Start: at(10, 0), End: at(11, 0)},
            want: true,
        },
        {
            name: "one minute overlap",
            a:    Interval{Start: at(9, 0), End: at(10, 1)},
            b:    Interval{Start: at(10, 0), End: at(11, 0)},
            want: true,
        },
        {
            // Half-open intervals: a booking ending at 10:00 does not
            // conflict with one starting at 10:00.
            name: "back to back",
            a:    Interval{Start: at(9, 0), End: at(10, 0)},
            b:    Interval{Start: at(10, 0), End: at(11, 0)},
            want: false,
        },
        {
            name: "disjoint",
            a:    Interval{Start: at(9, 0), End: at(10, 0)},
            b:    Interval{Start: at(14, 0), End: at(15, 0)},
            want: false,
        },
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, tc.a.Overlaps(tc.b))
            // The predicate is symmetric.
            assert.Equal(t, tc.want, tc.b.Overlaps(tc.a))
        })
    }
}

func TestBookingInterval(t *testing.T) {
    b := Booking{StartTime: at(9, 0), EndTime: at(10, 0)}
    iv := b.Interval()
    assert.Equal(t, at(9, 0), iv.Start)
    assert.Equal(t, at(10, 0), iv.End)
    assert.True(t, iv.Valid())
}
