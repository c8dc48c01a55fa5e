// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package bcd

import (
	"fmt"
	"time"
)

// Timestamp is an 8-byte packed BCD timestamp in UTC. The bytes are, in
// order: century, year within century, month, day, hour, minute, second,
// and a reserved byte which is always zero.
type Timestamp [8]byte

// Encode packs a two-digit decimal value into a single BCD byte, with the
// tens digit in the high nibble and the units digit in the low nibble.
// Values outside the 0..99 range yield the 0xFF sentinel.
func Encode(n int) byte {
	if n < 0 || n > 99 {
		return 0xFF
	}
	return byte(n/10)<<4 | byte(n%10)
}

// Decode unpacks a BCD byte back into its decimal value.
func Decode(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// Now returns the current UTC wall time as a BCD timestamp.
func Now() Timestamp {
	return FromTime(time.Now())
}

// FromTime converts t to a BCD timestamp. The time is rendered in UTC.
func FromTime(t time.Time) Timestamp {
	utc := t.UTC()
	year := utc.Year()

	return Timestamp{
		Encode(year / 100),
		Encode(year % 100),
		Encode(int(utc.Month())),
		Encode(utc.Day()),
		Encode(utc.Hour()),
		Encode(utc.Minute()),
		Encode(utc.Second()),
		0x00,
	}
}

// IsZero reports whether the timestamp holds no value (all bytes zero).
func (ts Timestamp) IsZero() bool {
	return ts == Timestamp{}
}

// Time converts the timestamp back to a time.Time in UTC. The zero
// timestamp maps to the zero time.
func (ts Timestamp) Time() time.Time {
	if ts.IsZero() {
		return time.Time{}
	}

	year := Decode(ts[0])*100 + Decode(ts[1])
	return time.Date(
		year,
		time.Month(Decode(ts[2])),
		Decode(ts[3]),
		Decode(ts[4]),
		Decode(ts[5]),
		Decode(ts[6]),
		0,
		time.UTC,
	)
}

// String renders the timestamp as "YYYY-MM-DD HH:MM:SS". Since every byte
// is BCD, digits are printed directly from the packed form.
func (ts Timestamp) String() string {
	if ts.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%02X%02X-%02X-%02X %02X:%02X:%02X",
		ts[0], ts[1], ts[2], ts[3], ts[4], ts[5], ts[6])
}
