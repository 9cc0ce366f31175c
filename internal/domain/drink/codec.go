package drink

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Input carries client-supplied drink fields. A nil field was absent or null
// in the source document.
type Input struct {
	Title  *string
	Recipe Recipe
}

// Decode reads an input object such as {"title": "...", "recipe": [...]}.
// Unknown keys are skipped.
func (in *Input) Decode(d *jx.Decoder) error {
	if d.Next() != jx.Object {
		return errors.New("expected JSON object")
	}
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "title":
			switch d.Next() {
			case jx.Null:
				return d.Null()
			case jx.String:
				s, err := d.Str()
				if err != nil {
					return errors.Wrap(err, "title")
				}
				in.Title = &s
				return nil
			default:
				return &ValidationError{Field: "title", Reason: "must be a string"}
			}
		case "recipe":
			if d.Next() == jx.Null {
				return d.Null()
			}
			var r Recipe
			if err := r.Decode(d); err != nil {
				return err
			}
			in.Recipe = r
			return nil
		default:
			return d.Skip()
		}
	})
}

// Decode reads a recipe. Both a list of ingredients and a single ingredient
// object are accepted; the latter becomes a one-element recipe.
func (r *Recipe) Decode(d *jx.Decoder) error {
	switch tt := d.Next(); tt {
	case jx.Array:
		out := Recipe{}
		if err := d.Arr(func(d *jx.Decoder) error {
			var in Ingredient
			if err := in.Decode(d); err != nil {
				return err
			}
			out = append(out, in)
			return nil
		}); err != nil {
			return err
		}
		*r = out
		return nil
	case jx.Object:
		var in Ingredient
		if err := in.Decode(d); err != nil {
			return err
		}
		*r = Recipe{in}
		return nil
	default:
		return &ValidationError{Field: "recipe", Reason: "must be a list of ingredients"}
	}
}

// Decode reads a single {"name", "color", "parts"} object.
func (in *Ingredient) Decode(d *jx.Decoder) error {
	if d.Next() != jx.Object {
		return &ValidationError{Field: "recipe", Reason: "ingredient must be an object"}
	}
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			return decodeString(d, "name", &in.Name)
		case "color":
			return decodeString(d, "color", &in.Color)
		case "parts":
			return decodeParts(d, &in.Parts)
		default:
			return d.Skip()
		}
	})
}

func decodeString(d *jx.Decoder, field string, dst *string) error {
	switch d.Next() {
	case jx.Null:
		return d.Null()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return errors.Wrap(err, field)
		}
		*dst = s
		return nil
	default:
		return &ValidationError{Field: field, Reason: "must be a string"}
	}
}

// maxPartsLiteral caps the textual length of a parts value before parsing.
const maxPartsLiteral = 40

// decodeParts accepts a JSON number or a numeric string.
func decodeParts(d *jx.Decoder, dst *decimal.Decimal) error {
	var raw string
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return errors.Wrap(err, "parts")
		}
		raw = string(n)
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return errors.Wrap(err, "parts")
		}
		raw = s
	default:
		return &ValidationError{Field: "parts", Reason: "must be a number"}
	}
	if len(raw) > maxPartsLiteral {
		return &ValidationError{Field: "parts", Reason: "out of range"}
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return &ValidationError{Field: "parts", Reason: "must be a number"}
	}
	*dst = v
	return nil
}

// EncodeShort writes the public projection of the drink: ingredient names
// are left out of the recipe.
func (d Drink) EncodeShort(e *jx.Encoder) {
	d.encode(e, false)
}

// EncodeLong writes every field of the drink.
func (d Drink) EncodeLong(e *jx.Encoder) {
	d.encode(e, true)
}

func (d Drink) encode(e *jx.Encoder, long bool) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(d.ID)
	e.FieldStart("title")
	e.Str(d.Title)
	e.FieldStart("recipe")
	d.Recipe.encode(e, long)
	e.ObjEnd()
}

func (r Recipe) encode(e *jx.Encoder, withNames bool) {
	e.ArrStart()
	for _, in := range r {
		e.ObjStart()
		if withNames {
			e.FieldStart("name")
			e.Str(in.Name)
		}
		e.FieldStart("color")
		e.Str(in.Color)
		e.FieldStart("parts")
		e.Num(jx.Num(in.Parts.String()))
		e.ObjEnd()
	}
	e.ArrEnd()
}

// MarshalRecipe serializes the full recipe for storage.
func MarshalRecipe(r Recipe) []byte {
	var e jx.Encoder
	r.encode(&e, true)
	return e.Bytes()
}

// ParseRecipe decodes a recipe produced by MarshalRecipe.
func ParseRecipe(data []byte) (Recipe, error) {
	var r Recipe
	if err := r.Decode(jx.DecodeBytes(data)); err != nil {
		return nil, errors.Wrap(err, "parse recipe")
	}
	return r, nil
}
