package dynmig

import (
	"math/big"
	"time"

	"github.com/google/uuid"
)

// PrimitiveKind enumerates the primitive kinds a Primitive value may carry.
type PrimitiveKind int

const (
	_ PrimitiveKind = iota // skip zero value, use it as a default (invalid) value

	PrimUnit
	PrimBoolean
	PrimByte
	PrimShort
	PrimInt
	PrimLong
	PrimFloat
	PrimDouble
	PrimChar
	PrimString
	PrimBigInt
	PrimBigDecimal
	PrimUUID
	PrimInstant
	PrimLocalDate
	PrimLocalTime
	PrimLocalDateTime
	PrimDuration
	PrimPeriod
	PrimYear
	PrimYearMonth
	PrimMonthDay
	PrimDayOfWeek
	PrimMonth
	PrimZoneID
	PrimZoneOffset
	PrimOffsetDateTime
	PrimOffsetTime
	PrimZonedDateTime
	PrimCurrency
)

var primitiveKindNames = map[PrimitiveKind]string{
	PrimUnit:           "Unit",
	PrimBoolean:        "Boolean",
	PrimByte:           "Byte",
	PrimShort:          "Short",
	PrimInt:            "Int",
	PrimLong:           "Long",
	PrimFloat:          "Float",
	PrimDouble:         "Double",
	PrimChar:           "Char",
	PrimString:         "String",
	PrimBigInt:         "BigInt",
	PrimBigDecimal:     "BigDecimal",
	PrimUUID:           "UUID",
	PrimInstant:        "Instant",
	PrimLocalDate:      "LocalDate",
	PrimLocalTime:      "LocalTime",
	PrimLocalDateTime:  "LocalDateTime",
	PrimDuration:       "Duration",
	PrimPeriod:         "Period",
	PrimYear:           "Year",
	PrimYearMonth:      "YearMonth",
	PrimMonthDay:       "MonthDay",
	PrimDayOfWeek:      "DayOfWeek",
	PrimMonth:          "Month",
	PrimZoneID:         "ZoneId",
	PrimZoneOffset:     "ZoneOffset",
	PrimOffsetDateTime: "OffsetDateTime",
	PrimOffsetTime:     "OffsetTime",
	PrimZonedDateTime:  "ZonedDateTime",
	PrimCurrency:       "Currency",
}

func (k PrimitiveKind) String() string {
	if n, ok := primitiveKindNames[k]; ok {
		return n
	}
	return "Invalid"
}

// PrimitiveKindFromString resolves the name produced by String back to a kind.
func PrimitiveKindFromString(name string) (PrimitiveKind, bool) {
	for k, n := range primitiveKindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Calendar-only carriers the time package has no standalone type for.

// LocalDate is a date without time zone or time of day.
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// LocalTime is a wall-clock time without date or zone.
type LocalTime struct {
	Hour   int
	Minute int
	Second int
	Nano   int
}

// LocalDateTime pairs a LocalDate with a LocalTime.
type LocalDateTime struct {
	Date LocalDate
	Time LocalTime
}

// Period is a calendar-based amount of time (years, months, days).
type Period struct {
	Years  int
	Months int
	Days   int
}

// YearMonth is a year plus month, without a day.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthDay is a month plus day, without a year.
type MonthDay struct {
	Month time.Month
	Day   int
}

// OffsetTime is a wall-clock time with a fixed UTC offset in seconds.
type OffsetTime struct {
	Time          LocalTime
	OffsetSeconds int
}

// Primitive wraps exactly one primitive kind. The dynamic value carried in
// Value matches the kind's Go representation (see the constructors below).
type Primitive struct {
	K     PrimitiveKind
	Value any
}

func (p Primitive) Kind() ValueKind { return KindPrimitive }
func (p Primitive) isDynamicValue() {}

func (p Primitive) Equal(other DynamicValue) bool {
	o, ok := Force(other).(Primitive)
	if !ok || o.K != p.K {
		return false
	}
	switch p.K {
	case PrimUnit:
		return true
	case PrimBigInt:
		a, aok := p.Value.(*big.Int)
		b, bok := o.Value.(*big.Int)
		return aok && bok && a.Cmp(b) == 0
	case PrimBigDecimal:
		a, aok := p.Value.(*big.Rat)
		b, bok := o.Value.(*big.Rat)
		return aok && bok && a.Cmp(b) == 0
	case PrimInstant, PrimOffsetDateTime, PrimZonedDateTime:
		a, aok := p.Value.(time.Time)
		b, bok := o.Value.(time.Time)
		return aok && bok && a.Equal(b)
	default:
		return p.Value == o.Value
	}
}

// Constructors, one per kind.

func Unit() Primitive                      { return Primitive{K: PrimUnit} }
func Bool(v bool) Primitive                { return Primitive{K: PrimBoolean, Value: v} }
func Byte(v int8) Primitive                { return Primitive{K: PrimByte, Value: v} }
func Short(v int16) Primitive              { return Primitive{K: PrimShort, Value: v} }
func Int(v int32) Primitive                { return Primitive{K: PrimInt, Value: v} }
func Long(v int64) Primitive               { return Primitive{K: PrimLong, Value: v} }
func Float(v float32) Primitive            { return Primitive{K: PrimFloat, Value: v} }
func Double(v float64) Primitive           { return Primitive{K: PrimDouble, Value: v} }
func Char(v rune) Primitive                { return Primitive{K: PrimChar, Value: v} }
func Str(v string) Primitive               { return Primitive{K: PrimString, Value: v} }
func BigIntVal(v *big.Int) Primitive       { return Primitive{K: PrimBigInt, Value: v} }
func BigDecimal(v *big.Rat) Primitive      { return Primitive{K: PrimBigDecimal, Value: v} }
func UUIDVal(v uuid.UUID) Primitive        { return Primitive{K: PrimUUID, Value: v} }
func Instant(v time.Time) Primitive        { return Primitive{K: PrimInstant, Value: v.UTC()} }
func LocalDateVal(v LocalDate) Primitive   { return Primitive{K: PrimLocalDate, Value: v} }
func LocalTimeVal(v LocalTime) Primitive   { return Primitive{K: PrimLocalTime, Value: v} }
func LocalDateTimeVal(v LocalDateTime) Primitive {
	return Primitive{K: PrimLocalDateTime, Value: v}
}
func DurationVal(v time.Duration) Primitive { return Primitive{K: PrimDuration, Value: v} }
func PeriodVal(v Period) Primitive          { return Primitive{K: PrimPeriod, Value: v} }
func Year(v int) Primitive                  { return Primitive{K: PrimYear, Value: v} }
func YearMonthVal(v YearMonth) Primitive    { return Primitive{K: PrimYearMonth, Value: v} }
func MonthDayVal(v MonthDay) Primitive      { return Primitive{K: PrimMonthDay, Value: v} }
func DayOfWeek(v time.Weekday) Primitive    { return Primitive{K: PrimDayOfWeek, Value: v} }
func MonthVal(v time.Month) Primitive       { return Primitive{K: PrimMonth, Value: v} }
func ZoneID(v string) Primitive             { return Primitive{K: PrimZoneID, Value: v} }
func ZoneOffset(seconds int) Primitive      { return Primitive{K: PrimZoneOffset, Value: seconds} }
func OffsetDateTime(v time.Time) Primitive  { return Primitive{K: PrimOffsetDateTime, Value: v} }
func OffsetTimeVal(v OffsetTime) Primitive  { return Primitive{K: PrimOffsetTime, Value: v} }
func ZonedDateTime(v time.Time) Primitive   { return Primitive{K: PrimZonedDateTime, Value: v} }
func Currency(code string) Primitive        { return Primitive{K: PrimCurrency, Value: code} }

// StringValue extracts the Go string from a String-kind primitive.
func (p Primitive) StringValue() (string, bool) {
	if p.K != PrimString {
		return "", false
	}
	s, ok := p.Value.(string)
	return s, ok
}

// IsNumeric reports whether the kind participates in arithmetic.
func (k PrimitiveKind) IsNumeric() bool {
	switch k {
	case PrimByte, PrimShort, PrimInt, PrimLong, PrimFloat, PrimDouble, PrimBigInt, PrimBigDecimal:
		return true
	}
	return false
}

// IsIntegral reports whether the kind is a fixed-width or big integer.
func (k PrimitiveKind) IsIntegral() bool {
	switch k {
	case PrimByte, PrimShort, PrimInt, PrimLong, PrimBigInt:
		return true
	}
	return false
}
