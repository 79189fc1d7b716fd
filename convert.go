package dynmig

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// isoCurrencies is the accepted ISO-4217 subset. Parsing an unlisted code
// fails with conversion_error.
var isoCurrencies = map[string]bool{
	"AED": true, "AUD": true, "BRL": true, "CAD": true, "CHF": true,
	"CNY": true, "CZK": true, "DKK": true, "EUR": true, "GBP": true,
	"HKD": true, "HUF": true, "IDR": true, "ILS": true, "INR": true,
	"JPY": true, "KRW": true, "MXN": true, "MYR": true, "NOK": true,
	"NZD": true, "PHP": true, "PLN": true, "RUB": true, "SAR": true,
	"SEK": true, "SGD": true, "THB": true, "TRY": true, "TWD": true,
	"USD": true, "VND": true, "ZAR": true,
}

// FormatPrimitive renders a primitive to its canonical string form. This is
// the String target of ConvertPrimitive and the wire form used by codecs.
func FormatPrimitive(p Primitive) string {
	switch p.K {
	case PrimUnit:
		return ""
	case PrimBoolean:
		return strconv.FormatBool(p.Value.(bool))
	case PrimByte:
		return strconv.FormatInt(int64(p.Value.(int8)), 10)
	case PrimShort:
		return strconv.FormatInt(int64(p.Value.(int16)), 10)
	case PrimInt:
		return strconv.FormatInt(int64(p.Value.(int32)), 10)
	case PrimLong:
		return strconv.FormatInt(p.Value.(int64), 10)
	case PrimFloat:
		return strconv.FormatFloat(float64(p.Value.(float32)), 'g', -1, 32)
	case PrimDouble:
		return strconv.FormatFloat(p.Value.(float64), 'g', -1, 64)
	case PrimChar:
		return string(p.Value.(rune))
	case PrimString:
		return p.Value.(string)
	case PrimBigInt:
		return p.Value.(*big.Int).String()
	case PrimBigDecimal:
		return formatRat(p.Value.(*big.Rat))
	case PrimUUID:
		return p.Value.(uuid.UUID).String()
	case PrimInstant:
		return p.Value.(time.Time).UTC().Format(time.RFC3339Nano)
	case PrimLocalDate:
		d := p.Value.(LocalDate)
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
	case PrimLocalTime:
		return formatLocalTime(p.Value.(LocalTime))
	case PrimLocalDateTime:
		dt := p.Value.(LocalDateTime)
		return fmt.Sprintf("%04d-%02d-%02dT%s", dt.Date.Year, int(dt.Date.Month), dt.Date.Day, formatLocalTime(dt.Time))
	case PrimDuration:
		return p.Value.(time.Duration).String()
	case PrimPeriod:
		return formatPeriod(p.Value.(Period))
	case PrimYear:
		return fmt.Sprintf("%04d", p.Value.(int))
	case PrimYearMonth:
		ym := p.Value.(YearMonth)
		return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
	case PrimMonthDay:
		md := p.Value.(MonthDay)
		return fmt.Sprintf("--%02d-%02d", int(md.Month), md.Day)
	case PrimDayOfWeek:
		return p.Value.(time.Weekday).String()
	case PrimMonth:
		return p.Value.(time.Month).String()
	case PrimZoneID:
		return p.Value.(string)
	case PrimZoneOffset:
		return formatZoneOffset(p.Value.(int))
	case PrimOffsetDateTime, PrimZonedDateTime:
		return p.Value.(time.Time).Format(time.RFC3339Nano)
	case PrimOffsetTime:
		ot := p.Value.(OffsetTime)
		return formatLocalTime(ot.Time) + formatZoneOffset(ot.OffsetSeconds)
	case PrimCurrency:
		return p.Value.(string)
	}
	return fmt.Sprint(p.Value)
}

// ParsePrimitive parses the canonical string form of the given kind.
func ParsePrimitive(kind PrimitiveKind, s string) (Primitive, error) {
	fail := func(cause error) (Primitive, error) {
		return Primitive{}, failAt("/", CodeConversion, map[string]any{"kind": kind.String(), "input": s, "cause": fmt.Sprint(cause)})
	}
	switch kind {
	case PrimUnit:
		return Unit(), nil
	case PrimBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fail(err)
		}
		return Bool(b), nil
	case PrimByte:
		n, err := strconv.ParseInt(s, 10, 8)
		if err != nil {
			return fail(err)
		}
		return Byte(int8(n)), nil
	case PrimShort:
		n, err := strconv.ParseInt(s, 10, 16)
		if err != nil {
			return fail(err)
		}
		return Short(int16(n)), nil
	case PrimInt:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return fail(err)
		}
		return Int(int32(n)), nil
	case PrimLong:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fail(err)
		}
		return Long(n), nil
	case PrimFloat:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return fail(err)
		}
		return Float(float32(f)), nil
	case PrimDouble:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fail(err)
		}
		return Double(f), nil
	case PrimChar:
		rs := []rune(s)
		if len(rs) != 1 {
			return fail(fmt.Errorf("expected exactly one character, got %d", len(rs)))
		}
		return Char(rs[0]), nil
	case PrimString:
		return Str(s), nil
	case PrimBigInt:
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return fail(fmt.Errorf("invalid integer %q", s))
		}
		return BigIntVal(n), nil
	case PrimBigDecimal:
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return fail(fmt.Errorf("invalid decimal %q", s))
		}
		return BigDecimal(r), nil
	case PrimUUID:
		u, err := uuid.Parse(s)
		if err != nil {
			return fail(err)
		}
		return UUIDVal(u), nil
	case PrimInstant:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fail(err)
		}
		return Instant(t), nil
	case PrimLocalDate:
		d, err := parseLocalDate(s)
		if err != nil {
			return fail(err)
		}
		return LocalDateVal(d), nil
	case PrimLocalTime:
		lt, err := parseLocalTime(s)
		if err != nil {
			return fail(err)
		}
		return LocalTimeVal(lt), nil
	case PrimLocalDateTime:
		i := strings.IndexByte(s, 'T')
		if i < 0 {
			return fail(fmt.Errorf("missing T separator in %q", s))
		}
		d, err := parseLocalDate(s[:i])
		if err != nil {
			return fail(err)
		}
		lt, err := parseLocalTime(s[i+1:])
		if err != nil {
			return fail(err)
		}
		return LocalDateTimeVal(LocalDateTime{Date: d, Time: lt}), nil
	case PrimDuration:
		d, err := time.ParseDuration(s)
		if err != nil {
			return fail(err)
		}
		return DurationVal(d), nil
	case PrimPeriod:
		p, err := parsePeriod(s)
		if err != nil {
			return fail(err)
		}
		return PeriodVal(p), nil
	case PrimYear:
		y, err := strconv.Atoi(s)
		if err != nil {
			return fail(err)
		}
		return Year(y), nil
	case PrimYearMonth:
		var y, m int
		if _, err := fmt.Sscanf(s, "%04d-%02d", &y, &m); err != nil || m < 1 || m > 12 {
			return fail(fmt.Errorf("invalid year-month %q", s))
		}
		return YearMonthVal(YearMonth{Year: y, Month: time.Month(m)}), nil
	case PrimMonthDay:
		var m, d int
		if _, err := fmt.Sscanf(s, "--%02d-%02d", &m, &d); err != nil || m < 1 || m > 12 || d < 1 || d > 31 {
			return fail(fmt.Errorf("invalid month-day %q", s))
		}
		return MonthDayVal(MonthDay{Month: time.Month(m), Day: d}), nil
	case PrimDayOfWeek:
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			if wd.String() == s {
				return DayOfWeek(wd), nil
			}
		}
		return fail(fmt.Errorf("invalid day of week %q", s))
	case PrimMonth:
		for m := time.January; m <= time.December; m++ {
			if m.String() == s {
				return MonthVal(m), nil
			}
		}
		return fail(fmt.Errorf("invalid month %q", s))
	case PrimZoneID:
		if _, err := time.LoadLocation(s); err != nil {
			return fail(err)
		}
		return ZoneID(s), nil
	case PrimZoneOffset:
		off, err := parseZoneOffset(s)
		if err != nil {
			return fail(err)
		}
		return ZoneOffset(off), nil
	case PrimOffsetDateTime:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fail(err)
		}
		return OffsetDateTime(t), nil
	case PrimZonedDateTime:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fail(err)
		}
		return ZonedDateTime(t), nil
	case PrimOffsetTime:
		i := strings.IndexAny(s, "+-Z")
		if i < 0 {
			return fail(fmt.Errorf("missing offset in %q", s))
		}
		lt, err := parseLocalTime(s[:i])
		if err != nil {
			return fail(err)
		}
		off := 0
		if s[i] != 'Z' {
			off, err = parseZoneOffset(s[i:])
			if err != nil {
				return fail(err)
			}
		}
		return OffsetTimeVal(OffsetTime{Time: lt, OffsetSeconds: off}), nil
	case PrimCurrency:
		if !isoCurrencies[s] {
			return fail(fmt.Errorf("unknown currency code %q", s))
		}
		return Currency(s), nil
	}
	return fail(fmt.Errorf("unsupported kind %v", kind))
}

// ConvertPrimitive converts v between primitive kinds: identity, numeric
// widening/narrowing (range-checked), any kind to and from String via the
// canonical string form, Char/Int code points, and Instant interchange with
// the offset/zoned date-time kinds. Anything else is a conversion error.
func ConvertPrimitive(from, to PrimitiveKind, v DynamicValue) (DynamicValue, error) {
	p, ok := Force(v).(Primitive)
	if !ok {
		return nil, failAt("/", CodeTypeMismatch, map[string]any{"want": "Primitive", "got": Force(v).Kind().String()})
	}
	if p.K != from {
		return nil, failAt("/", CodeTypeMismatch, map[string]any{"want": from.String(), "got": p.K.String()})
	}
	if from == to {
		return p, nil
	}
	if from.IsNumeric() && to.IsNumeric() {
		return convertNumeric(p, to)
	}
	if to == PrimString {
		return Str(FormatPrimitive(p)), nil
	}
	if from == PrimString {
		return ParsePrimitive(to, p.Value.(string))
	}
	switch {
	case from == PrimChar && to == PrimInt:
		return Int(p.Value.(rune)), nil
	case from == PrimInt && to == PrimChar:
		return Char(rune(p.Value.(int32))), nil
	case from == PrimInstant && (to == PrimOffsetDateTime || to == PrimZonedDateTime):
		return Primitive{K: to, Value: p.Value}, nil
	case (from == PrimOffsetDateTime || from == PrimZonedDateTime) && to == PrimInstant:
		return Instant(p.Value.(time.Time)), nil
	case from == PrimLocalDate && to == PrimLocalDateTime:
		return LocalDateTimeVal(LocalDateTime{Date: p.Value.(LocalDate)}), nil
	case from == PrimLocalDateTime && to == PrimLocalDate:
		return LocalDateVal(p.Value.(LocalDateTime).Date), nil
	}
	return nil, failAt("/", CodeConversion, map[string]any{"from": from.String(), "to": to.String()})
}

// convertNumeric routes all numeric conversion through big.Rat so that
// narrowing is range-checked uniformly. Fractional values truncate toward
// zero when the target is integral.
func convertNumeric(p Primitive, to PrimitiveKind) (DynamicValue, error) {
	r, ok := primitiveToRat(p)
	if !ok {
		return nil, failAt("/", CodeConversion, map[string]any{"from": p.K.String(), "to": to.String()})
	}
	return ratToPrimitive(r, to)
}

func primitiveToRat(p Primitive) (*big.Rat, bool) {
	switch p.K {
	case PrimByte:
		return new(big.Rat).SetInt64(int64(p.Value.(int8))), true
	case PrimShort:
		return new(big.Rat).SetInt64(int64(p.Value.(int16))), true
	case PrimInt:
		return new(big.Rat).SetInt64(int64(p.Value.(int32))), true
	case PrimLong:
		return new(big.Rat).SetInt64(p.Value.(int64)), true
	case PrimFloat:
		f := float64(p.Value.(float32))
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return new(big.Rat).SetFloat64(f), true
	case PrimDouble:
		f := p.Value.(float64)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return new(big.Rat).SetFloat64(f), true
	case PrimBigInt:
		return new(big.Rat).SetInt(p.Value.(*big.Int)), true
	case PrimBigDecimal:
		return new(big.Rat).Set(p.Value.(*big.Rat)), true
	}
	return nil, false
}

func ratToPrimitive(r *big.Rat, to PrimitiveKind) (DynamicValue, error) {
	overflow := func() (DynamicValue, error) {
		return nil, failAt("/", CodeOverflow, map[string]any{"to": to.String(), "value": formatRat(r)})
	}
	truncated := func() *big.Int { return new(big.Int).Quo(r.Num(), r.Denom()) }
	switch to {
	case PrimByte:
		n := truncated()
		if !n.IsInt64() || n.Int64() < math.MinInt8 || n.Int64() > math.MaxInt8 {
			return overflow()
		}
		return Byte(int8(n.Int64())), nil
	case PrimShort:
		n := truncated()
		if !n.IsInt64() || n.Int64() < math.MinInt16 || n.Int64() > math.MaxInt16 {
			return overflow()
		}
		return Short(int16(n.Int64())), nil
	case PrimInt:
		n := truncated()
		if !n.IsInt64() || n.Int64() < math.MinInt32 || n.Int64() > math.MaxInt32 {
			return overflow()
		}
		return Int(int32(n.Int64())), nil
	case PrimLong:
		n := truncated()
		if !n.IsInt64() {
			return overflow()
		}
		return Long(n.Int64()), nil
	case PrimFloat:
		f, _ := r.Float64()
		if math.IsInf(f, 0) || math.Abs(f) > math.MaxFloat32 {
			return overflow()
		}
		return Float(float32(f)), nil
	case PrimDouble:
		f, _ := r.Float64()
		if math.IsInf(f, 0) {
			return overflow()
		}
		return Double(f), nil
	case PrimBigInt:
		return BigIntVal(truncated()), nil
	case PrimBigDecimal:
		return BigDecimal(r), nil
	}
	return nil, failAt("/", CodeConversion, map[string]any{"to": to.String()})
}

func formatRat(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	// Exact decimal when the denominator is 2^a*5^b, else keep the ratio form.
	if s := r.FloatString(32); new(big.Rat).SetFrac(r.Num(), r.Denom()).Cmp(mustRat(s)) == 0 {
		return strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return r.RatString()
}

func mustRat(s string) *big.Rat {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return new(big.Rat)
	}
	return r
}

func formatLocalTime(t LocalTime) string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Nano > 0 {
		s += strings.TrimRight(fmt.Sprintf(".%09d", t.Nano), "0")
	}
	return s
}

func parseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return LocalDate{}, err
	}
	return LocalDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func parseLocalTime(s string) (LocalTime, error) {
	layout := "15:04:05"
	if strings.Contains(s, ".") {
		layout = "15:04:05.999999999"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return LocalTime{}, err
	}
	return LocalTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nano: t.Nanosecond()}, nil
}

func formatPeriod(p Period) string {
	if p == (Period{}) {
		return "P0D"
	}
	b := &strings.Builder{}
	b.WriteByte('P')
	if p.Years != 0 {
		fmt.Fprintf(b, "%dY", p.Years)
	}
	if p.Months != 0 {
		fmt.Fprintf(b, "%dM", p.Months)
	}
	if p.Days != 0 {
		fmt.Fprintf(b, "%dD", p.Days)
	}
	return b.String()
}

func parsePeriod(s string) (Period, error) {
	if len(s) < 2 || s[0] != 'P' {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	var p Period
	num := ""
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9' || c == '-':
			num += string(c)
		case c == 'Y' || c == 'M' || c == 'D':
			n, err := strconv.Atoi(num)
			if err != nil {
				return Period{}, fmt.Errorf("invalid period %q", s)
			}
			switch c {
			case 'Y':
				p.Years = n
			case 'M':
				p.Months = n
			case 'D':
				p.Days = n
			}
			num = ""
		default:
			return Period{}, fmt.Errorf("invalid period %q", s)
		}
	}
	if num != "" {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	return p, nil
}

func formatZoneOffset(seconds int) string {
	if seconds == 0 {
		return "Z"
	}
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}

func parseZoneOffset(s string) (int, error) {
	if s == "Z" {
		return 0, nil
	}
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return 0, fmt.Errorf("invalid zone offset %q", s)
	}
	h, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(s[4:6])
	if err != nil {
		return 0, err
	}
	off := h*3600 + m*60
	if s[0] == '-' {
		off = -off
	}
	return off, nil
}

// describeValue renders a short, single-line description of a value, used in
// issue paths and human summaries.
func describeValue(v DynamicValue) string {
	switch t := Force(v).(type) {
	case Primitive:
		return FormatPrimitive(t)
	case Record:
		names := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			names[i] = f.Name
		}
		return "Record(" + strings.Join(names, ",") + ")"
	case Variant:
		return "Variant(" + t.Case + ")"
	case Sequence:
		return fmt.Sprintf("Sequence(%d)", len(t.Elements))
	case MapValue:
		return fmt.Sprintf("Map(%d)", len(t.Entries))
	case Null:
		return "null"
	}
	return "?"
}
