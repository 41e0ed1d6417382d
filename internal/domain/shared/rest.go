package shared

// RestType identifies which rest recharges a resource
type RestType string

const (
	RestTypeNone  RestType = ""
	RestTypeShort RestType = "short_rest"
	RestTypeLong  RestType = "long_rest"
)

// Duration is how long a resource-granted modifier survives
type Duration string

const (
	DurationShortRest Duration = "short_rest"
	DurationLongRest  Duration = "long_rest"
	DurationPermanent Duration = "permanent"
)

// EndsOn reports whether a modifier with this duration is cleared by the given rest.
// A long rest clears every resource modifier, permanent ones included.
func (d Duration) EndsOn(rest RestType) bool {
	switch rest {
	case RestTypeShort:
		return d == DurationShortRest
	case RestTypeLong:
		return true
	}
	return false
}
