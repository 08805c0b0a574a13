package form

import (
	"encoding/json"
	"fmt"
	"strconv"

	"career-predictor/internal/common/errors"
)

// ValuesFromVariables converts decoded job variables into form text. Numbers
// are rendered without trailing zeros and null becomes an empty field. Unknown
// keys are rejected.
func ValuesFromVariables(raw map[string]interface{}) (Values, error) {
	values := make(Values, len(fields))
	for _, f := range fields {
		values[f] = ""
	}

	for name, v := range raw {
		f, err := ParseField(name)
		if err != nil {
			return nil, err
		}
		switch x := v.(type) {
		case nil:
			values[f] = ""
		case string:
			values[f] = x
		case float64:
			values[f] = strconv.FormatFloat(x, 'f', -1, 64)
		case json.Number:
			values[f] = x.String()
		case int:
			values[f] = strconv.Itoa(x)
		case int64:
			values[f] = strconv.FormatInt(x, 10)
		default:
			return nil, errors.NewInvalidInputError(fmt.Sprintf("%s: unsupported value of type %T", name, v))
		}
	}
	return values, nil
}
