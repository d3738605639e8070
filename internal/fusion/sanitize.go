package fusion

import "github.com/sells-group/inforoute-cli/internal/model"

// Sanitize returns a copy of f without properties whose value is nil or the
// empty string. Zero numbers and false are kept. The geometry is shared, the
// input feature is left untouched. Sanitize is idempotent.
func Sanitize(f *model.Feature) *model.Feature {
	props := make(model.Properties, len(f.Properties))
	for k, v := range f.Properties {
		if isEmpty(v) {
			continue
		}
		props[k] = v
	}
	return &model.Feature{Geometry: f.Geometry, Properties: props}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
