package datefilter

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// FromQuery builds a Filter from type, year, month, from and to parameters. A
// missing type yields an unbounded custom filter. Range bounds accept RFC 3339 or
// YYYY-MM-DD; a date-only "to" covers the whole day.
func FromQuery(q url.Values, loc *time.Location) (Filter, error) {
	if loc == nil {
		loc = time.Local
	}

	f := Filter{Type: Type(q.Get("type"))}
	if f.Type == "" {
		f.Type = TypeCustom
	}

	var err error

	if f.Year, err = intParam(q, "year"); err != nil {
		return Filter{}, err
	}

	if f.Month, err = intParam(q, "month"); err != nil {
		return Filter{}, err
	}

	if v := q.Get("from"); v != "" {
		from, err := parseBound(v, loc, false)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: from: %w", ErrInvalidFilter, err)
		}

		f.From = &from
	}

	if v := q.Get("to"); v != "" {
		to, err := parseBound(v, loc, true)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: to: %w", ErrInvalidFilter, err)
		}

		f.To = &to
	}

	if err := f.Validate(); err != nil {
		return Filter{}, err
	}

	return f, nil
}

// Query is the inverse of FromQuery.
func (f Filter) Query() url.Values {
	q := url.Values{}
	q.Set("type", string(f.Type))

	if f.Year != nil {
		q.Set("year", strconv.Itoa(*f.Year))
	}

	if f.Month != nil {
		q.Set("month", strconv.Itoa(*f.Month))
	}

	if f.From != nil {
		q.Set("from", f.From.Format(time.RFC3339Nano))
	}

	if f.To != nil {
		q.Set("to", f.To.Format(time.RFC3339Nano))
	}

	return q
}

func intParam(q url.Values, name string) (*int, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidFilter, name, v)
	}

	return &n, nil
}

func parseBound(v string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}

	d, err := time.ParseInLocation(time.DateOnly, v, loc)
	if err != nil {
		return time.Time{}, err
	}

	if endOfDay {
		d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return d, nil
}
