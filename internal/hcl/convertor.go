package hcl

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/rf2kit/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var errNullValue = errors.New("value must not be null")

// converter turns evaluated attribute values into Go values.
type converter struct{}

// toString converts a primitive value to its string form, so that
// `typeId = 900000000000550004` and `typeId = "900000000000550004"` mean the
// same thing.
func (c converter) toString(ctx context.Context, val cty.Value) (string, error) {
	if val.IsNull() {
		return "", errNullValue
	}
	if !val.IsKnown() {
		return "", fmt.Errorf("value of type %s is not known", val.Type().FriendlyName())
	}
	converted, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot convert %s to string: %w", val.Type().FriendlyName(), err)
	}
	if !val.Type().Equals(converted.Type()) {
		ctxlog.FromContext(ctx).Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", converted.Type().FriendlyName(),
		)
	}
	var s string
	if err := gocty.FromCtyValue(converted, &s); err != nil {
		return "", err
	}
	return s, nil
}
