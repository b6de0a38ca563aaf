package catalog

import "strings"

// Field is a semantic column of the collection, independent of the header
// text used by any particular export.
type Field int

const (
	FieldIdentifier Field = iota
	FieldName
	FieldLocation
	FieldLocationDetail
	FieldRegion
	FieldYear
	FieldDate
	FieldQuality
	FieldRarity
	FieldCondition
	FieldSize
	FieldGroup
	FieldDescription

	// FieldPhoto is the photo column of the presentation. It is never bound
	// to a header and cannot be sorted.
	FieldPhoto
)

// mappedFields is the number of fields that can be bound to a column.
const mappedFields = int(FieldDescription) + 1

var fieldNames = [...]string{
	FieldIdentifier:     "inv",
	FieldName:           "name",
	FieldLocation:       "loc",
	FieldLocationDetail: "locDetail",
	FieldRegion:         "region",
	FieldYear:           "year",
	FieldDate:           "date",
	FieldQuality:        "quality",
	FieldRarity:         "rarity",
	FieldCondition:      "condition",
	FieldSize:           "size",
	FieldGroup:          "group",
	FieldDescription:    "desc",
	FieldPhoto:          "foto",
}

var fieldLabels = [...]string{
	FieldIdentifier:     "Inv. č.",
	FieldName:           "Název",
	FieldLocation:       "Lokalita",
	FieldLocationDetail: "Upřesnění",
	FieldRegion:         "Region",
	FieldYear:           "Rok",
	FieldDate:           "Datum",
	FieldQuality:        "Kvalita",
	FieldRarity:         "Vzácnost",
	FieldCondition:      "Stav",
	FieldSize:           "Velikost",
	FieldGroup:          "Grupa",
	FieldDescription:    "Popis",
	FieldPhoto:          "Foto",
}

// Fields returns the fields that can be bound to a column, in mapping order.
func Fields() []Field {
	out := make([]Field, mappedFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Columns returns the display order of the collection table, photo column
// included.
func Columns() []Field {
	return []Field{
		FieldIdentifier,
		FieldPhoto,
		FieldName,
		FieldLocation,
		FieldLocationDetail,
		FieldRegion,
		FieldYear,
		FieldDate,
		FieldQuality,
		FieldRarity,
		FieldCondition,
		FieldSize,
		FieldGroup,
		FieldDescription,
	}
}

// Valid reports whether f is a known field, photo included.
func (f Field) Valid() bool {
	return f >= FieldIdentifier && f <= FieldPhoto
}

// Mappable reports whether f can be bound to a header column.
func (f Field) Mappable() bool {
	return f >= FieldIdentifier && int(f) < mappedFields
}

// Sortable reports whether a view can be ordered by f.
func (f Field) Sortable() bool {
	return f.Mappable()
}

// String returns the stable wire name of the field ("inv", "name", ...).
func (f Field) String() string {
	if !f.Valid() {
		return ""
	}
	return fieldNames[f]
}

// Label returns the Czech column caption.
func (f Field) Label() string {
	if !f.Valid() {
		return ""
	}
	return fieldLabels[f]
}

// ParseField resolves a wire name. Matching is case-insensitive.
func ParseField(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for i, n := range fieldNames {
		if strings.EqualFold(n, name) {
			return Field(i), true
		}
	}
	return 0, false
}

// Keywords returns the normalized header fragments that identify f.
// A header binds to f when its normalized text contains any of them.
func Keywords(f Field) []string {
	switch f {
	case FieldIdentifier:
		return []string{"inventarni", "cislo", "id"}
	case FieldName:
		return []string{"nazev", "mineral"}
	case FieldLocation:
		return []string{"lokalita"}
	case FieldLocationDetail:
		return []string{"upresneni"}
	case FieldRegion:
		return []string{"region", "kraj", "oblast"}
	case FieldYear:
		return []string{"rok"}
	case FieldDate:
		return []string{"datum"}
	case FieldQuality:
		return []string{"kvalita"}
	case FieldRarity:
		return []string{"vzacnost"}
	case FieldCondition:
		return []string{"stav"}
	case FieldSize:
		return []string{"velikost"}
	case FieldGroup:
		return []string{"grupa", "skupina"}
	case FieldDescription:
		return []string{"popis", "poznamka"}
	default:
		return nil
	}
}
