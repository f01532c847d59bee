package measurements

import (
	"go.opentelemetry.io/otel/attribute"
)

var (
	AttrStatusSuccess = attribute.String("status", "success")
	AttrStatusError   = attribute.String("status", "error")

	AttrDirectionOutgoing = attribute.String("direction", "outgoing")
	AttrDirectionIncoming = attribute.String("direction", "incoming")

	attrDecisionKey = attribute.Key("decision")
)

// Status returns the status attribute corresponding to the given error.
func Status(err error) attribute.KeyValue {
	if err == nil {
		return AttrStatusSuccess
	}
	return AttrStatusError
}

// AttrDecision labels a measurement with the name of an impairment decision.
func AttrDecision(name string) attribute.KeyValue {
	return attrDecisionKey.String(name)
}

// Must panics if err is non-nil, otherwise returns v.
func Must[V any](v V, err error) V {
	if err != nil {
		panic(err)
	}
	return v
}
