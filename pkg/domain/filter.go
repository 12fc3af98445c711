package domain

import (
	"errors"
	"fmt"
	"strings"
)

// FilterProperty is an event field that can be searched on.
type FilterProperty string

// Operator compares a FilterProperty against a value.
type Operator string

const (
	PropertyEventID      FilterProperty = "event_id"
	PropertyTxHash       FilterProperty = "tx_hash"
	PropertyPrincipal    FilterProperty = "principal"
	PropertyEventType    FilterProperty = "event_type_id"
	PropertyTimestamp    FilterProperty = "timestamp"
	PropertyProviderName FilterProperty = "provider_name"
	PropertyProviderGUID FilterProperty = "provider_guid"
	PropertyCorrelation  FilterProperty = "correlation"
	PropertyChannel      FilterProperty = "channel"

	OperatorEqual  Operator = "eq"
	OperatorAfter  Operator = "after"
	OperatorBefore Operator = "before"
)

// ErrInvalidFilter is returned for filters the server would reject.
var ErrInvalidFilter = errors.New("invalid filter")

var knownProperties = map[FilterProperty]bool{
	PropertyEventID:      true,
	PropertyTxHash:       true,
	PropertyPrincipal:    true,
	PropertyEventType:    true,
	PropertyTimestamp:    true,
	PropertyProviderName: true,
	PropertyProviderGUID: true,
	PropertyCorrelation:  true,
	PropertyChannel:      true,
}

// Filter is a single search condition.
type Filter struct {
	Property FilterProperty `json:"property"`
	Operator Operator       `json:"operator"`
	Value    string         `json:"value"`
}

func (f Filter) String() string {
	return fmt.Sprintf("%s %s %s", f.Property, f.Operator, f.Value)
}

// Validate checks the property/operator combination. Only timestamps can be
// compared with after/before.
func (f Filter) Validate() error {
	if !knownProperties[f.Property] {
		return fmt.Errorf("%w: unknown property %q", ErrInvalidFilter, f.Property)
	}
	switch f.Operator {
	case OperatorEqual:
	case OperatorAfter, OperatorBefore:
		if f.Property != PropertyTimestamp {
			return fmt.Errorf("%w: %s only supports %s", ErrInvalidFilter, f.Property, OperatorEqual)
		}
	default:
		return fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, f.Operator)
	}
	if strings.TrimSpace(f.Value) == "" {
		return fmt.Errorf("%w: empty value", ErrInvalidFilter)
	}
	return nil
}

// ParseFilter parses "property operator value", e.g. "principal eq alice".
// The value may contain spaces.
func ParseFilter(s string) (Filter, error) {
	parts := strings.SplitN(strings.TrimSpace(s), " ", 3)
	if len(parts) != 3 {
		return Filter{}, fmt.Errorf("%w: want \"property operator value\", got %q", ErrInvalidFilter, s)
	}
	f := Filter{
		Property: FilterProperty(strings.ToLower(parts[0])),
		Operator: Operator(strings.ToLower(parts[1])),
		Value:    strings.TrimSpace(parts[2]),
	}
	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}
