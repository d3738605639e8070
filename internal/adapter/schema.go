package adapter

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/inforoute-cli/internal/geometry"
	"github.com/sells-group/inforoute-cli/internal/model"
)

// ExcludedCauseToken is dropped from list-valued causes before joining.
// ExcludedCauseToken is the Grist choice-list marker, never a cause.
const ExcludedCauseToken = model.ListMarker

// Kind selects how a canonical field value is normalized.
type Kind string

const (
	// KindText keeps scalars; text is trimmed and NFC-normalized.
	KindText Kind = "text"
	// KindCause joins list values with ", " after dropping ExcludedCauseToken.
	KindCause Kind = "cause"
	// KindDate renders epoch seconds as RFC 3339 UTC; strings pass through.
	KindDate Kind = "date"
)

// Field maps one canonical property from an ordered list of candidate keys.
type Field struct {
	Name    string   `yaml:"name"`
	Keys    []string `yaml:"keys"`
	Kind    Kind     `yaml:"kind,omitempty"`
	Default any      `yaml:"default,omitempty"`
}

// Schema declares how one provider's records map onto canonical properties.
type Schema struct {
	Key    string   `yaml:"key"`
	Label  string   `yaml:"label"`
	IDKeys []string `yaml:"id_keys,omitempty"`

	// GeometryTypeKeys name the provider field that overrides the derived
	// geometry_type property.
	GeometryTypeKeys []string `yaml:"geometry_type_keys,omitempty"`

	Fields   []Field           `yaml:"fields"`
	Resolver geometry.Resolver `yaml:"-"`
}

// SchemaAdapter is an Adapter driven entirely by a Schema.
type SchemaAdapter struct {
	schema Schema
}

// NewSchemaAdapter creates an adapter for the given schema. A zero Resolver
// is replaced by geometry.Default.
func NewSchemaAdapter(s Schema) *SchemaAdapter {
	if len(s.Resolver.LatKeys) == 0 && len(s.Resolver.SerializedKeys) == 0 {
		s.Resolver = geometry.Default
	}
	return &SchemaAdapter{schema: s}
}

// Key returns the source tag.
func (a *SchemaAdapter) Key() string { return a.schema.Key }

// Label returns the source display label.
func (a *SchemaAdapter) Label() string { return a.schema.Label }

// Schema returns the adapter's schema.
func (a *SchemaAdapter) Schema() Schema { return a.schema }

// Map converts one record into a feature or a rejection.
func (a *SchemaAdapter) Map(rec model.RawRecord) (res Result) {
	id := a.recordID(rec)

	defer func() {
		if r := recover(); r != nil {
			res = a.reject(id, ReasonMapping, eris.Errorf("panic during mapping: %v", r))
		}
	}()

	if id == "" {
		return a.reject(id, ReasonMissingID, nil)
	}

	g, _, err := a.schema.Resolver.Resolve(rec.Fields)
	if err != nil {
		return a.reject(id, ReasonMalformedGeometry, err)
	}
	if g == nil {
		return a.reject(id, ReasonNoGeometry, nil)
	}

	props, err := a.properties(rec.Fields)
	if err != nil {
		return a.reject(id, ReasonMapping, err)
	}

	props["id"] = a.schema.Key + "-" + id
	props["source"] = a.schema.Label
	props["geometry_type"] = model.GeometryType(g)
	for _, key := range a.schema.GeometryTypeKeys {
		if s, ok := rec.Fields.String(key); ok {
			props["geometry_type"] = s
			break
		}
	}

	return Accepted(&model.Feature{Geometry: g, Properties: props})
}

func (a *SchemaAdapter) recordID(rec model.RawRecord) string {
	if id := strings.TrimSpace(rec.ID); id != "" {
		return id
	}
	for _, key := range a.schema.IDKeys {
		if s, ok := rec.Fields.String(key); ok {
			return s
		}
	}
	return ""
}

// properties evaluates every schema field in declaration order.
func (a *SchemaAdapter) properties(f model.Fields) (model.Properties, error) {
	props := make(model.Properties, len(a.schema.Fields)+3)
	for _, field := range a.schema.Fields {
		v, ok, err := resolveField(f, field)
		if err != nil {
			return nil, eris.Wrapf(err, "map %s", field.Name)
		}
		if !ok {
			v = field.Default
		}
		props[field.Name] = v
	}
	return props, nil
}

// resolveField returns the first non-empty candidate value.
func resolveField(f model.Fields, field Field) (any, bool, error) {
	for _, key := range field.Keys {
		var (
			v   any
			ok  bool
			err error
		)
		switch field.Kind {
		case KindCause:
			v, ok, err = causeValue(f, key)
		case KindDate:
			v, ok, err = dateValue(f, key)
		default:
			v, ok, err = textValue(f, key)
		}
		if err != nil {
			return nil, false, err
		}
		if ok {
			return v, true, nil
		}
	}
	return nil, false, nil
}

func textValue(f model.Fields, key string) (any, bool, error) {
	v, ok, err := f.Scalar(key)
	if err != nil || !ok {
		return nil, false, err
	}
	if s, isStr := v.(string); isStr {
		return norm.NFC.String(s), true, nil
	}
	return v, true, nil
}

// causeValue filters ExcludedCauseToken from list values, then joins.
func causeValue(f model.Fields, key string) (any, bool, error) {
	if !f.Has(key) {
		return nil, false, nil
	}
	if _, isObj := f.Object(key); isObj {
		return nil, false, eris.Wrapf(model.ErrNotScalar, "cause field %q", key)
	}
	tokens, ok := f.Strings(key)
	if !ok {
		return nil, false, nil
	}
	joined := JoinCauses(tokens)
	return joined, joined != "", nil
}

// JoinCauses drops empty tokens and ExcludedCauseToken and joins the rest
// with ", ".
func JoinCauses(tokens []string) string {
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t == "" || t == ExcludedCauseToken {
			continue
		}
		kept = append(kept, norm.NFC.String(t))
	}
	return strings.Join(kept, ", ")
}

func dateValue(f model.Fields, key string) (any, bool, error) {
	v, ok, err := f.Scalar(key)
	if err != nil || !ok {
		return nil, false, err
	}
	if s, isStr := v.(string); isStr {
		return s, true, nil
	}
	if secs, isNum := f.Float(key); isNum {
		return time.Unix(int64(secs), 0).UTC().Format(time.RFC3339), true, nil
	}
	return v, true, nil
}

func (a *SchemaAdapter) reject(id string, reason Reason, err error) Result {
	rej := &Rejection{Source: a.schema.Key, RecordID: id, Reason: reason, Err: err}
	fields := []zap.Field{
		zap.String("source", a.schema.Key),
		zap.String("record_id", id),
		zap.String("reason", string(reason)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	zap.L().Warn("adapter: record dropped", fields...)
	return Rejected(rej)
}
