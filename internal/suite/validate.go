package suite

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"golang.org/x/text/unicode/norm"
)

//go:embed schema.cue
var schemaSrc string

// Validation error codes (E200-E299).
const (
	ErrRead           = "E200" // file could not be read
	ErrParse          = "E201" // YAML is malformed or has unknown fields
	ErrSchema         = "E202" // document violates the CUE schema
	ErrNameEmpty      = "E203" // suite name is required
	ErrNoVectors      = "E204" // at least one vector required
	ErrLabelEmpty     = "E205" // vector label is required
	ErrDuplicateLabel = "E206" // vector labels must be unique
	ErrValueRange     = "E207" // bus value outside 8-bit range
	ErrTimingRange    = "E208" // timing override out of range
)

// ValidationError describes one problem found in a suite file.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateFile checks a suite file against the embedded CUE schema and
// the structural rules, collecting all errors rather than failing fast.
// An empty slice means the file is a valid suite definition.
func ValidateFile(path string) []ValidationError {
	data, err := os.ReadFile(path)
	if err != nil {
		return []ValidationError{{
			Field:   "file",
			Message: err.Error(),
			Code:    ErrRead,
		}}
	}
	return Validate(data)
}

// Validate checks a suite document in memory. See ValidateFile.
func Validate(data []byte) []ValidationError {
	if errs := validateSchema(data); len(errs) > 0 {
		return errs
	}
	raw, err := decodeStrict(data)
	if err != nil {
		return []ValidationError{{
			Field:   "document",
			Message: err.Error(),
			Code:    ErrParse,
		}}
	}
	return validateStatic(raw)
}

// validateSchema unifies the document with the embedded schema and
// reports every constraint violation with its source position.
func validateSchema(data []byte) []ValidationError {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema is embedded; failing to compile it is a bug.
		panic(fmt.Sprintf("suite: embedded schema invalid: %v", err))
	}

	file, err := cueyaml.Extract("suite.yaml", data)
	if err != nil {
		return cueToValidation(err, ErrParse)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return cueToValidation(err, ErrParse)
	}

	if err := schema.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return cueToValidation(err, ErrSchema)
	}
	return nil
}

// cueToValidation flattens a CUE error list into ValidationErrors.
func cueToValidation(err error, code string) []ValidationError {
	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		ve := ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: e.Error(),
			Code:    code,
		}
		if pos := e.Position(); pos.IsValid() {
			ve.Line = pos.Line()
		}
		if ve.Field == "" {
			ve.Field = "document"
		}
		out = append(out, ve)
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Field: "document", Message: err.Error(), Code: code})
	}
	return out
}

// validateStatic applies the rules the schema cannot express, chiefly
// label uniqueness. It also re-checks ranges so Parse (which skips the
// CUE pass) still rejects bad values.
func validateStatic(raw *rawSuite) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(raw.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "suite name is required and must be non-empty",
			Code:    ErrNameEmpty,
		})
	}
	if len(raw.Vectors) == 0 {
		errs = append(errs, ValidationError{
			Field:   "vectors",
			Message: "at least one vector is required",
			Code:    ErrNoVectors,
		})
	}

	seen := make(map[string]int)
	for i, v := range raw.Vectors {
		field := fmt.Sprintf("vectors[%d]", i)
		label := norm.NFC.String(v.Label)
		if strings.TrimSpace(label) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".label",
				Message: "label is required and must be non-empty",
				Code:    ErrLabelEmpty,
			})
		} else if prev, dup := seen[label]; dup {
			errs = append(errs, ValidationError{
				Field:   field + ".label",
				Message: fmt.Sprintf("label %q already used by vectors[%d]", label, prev),
				Code:    ErrDuplicateLabel,
			})
		} else {
			seen[label] = i
		}
		if v.InputA < 0 || v.InputA > 0xFF {
			errs = append(errs, ValidationError{
				Field:   field + ".input_a",
				Message: fmt.Sprintf("value %d outside 8-bit range [0, 255]", v.InputA),
				Code:    ErrValueRange,
			})
		}
		if v.InputB < 0 || v.InputB > 0xFF {
			errs = append(errs, ValidationError{
				Field:   field + ".input_b",
				Message: fmt.Sprintf("value %d outside 8-bit range [0, 255]", v.InputB),
				Code:    ErrValueRange,
			})
		}
	}

	// Zero timing fields mean "engine default"; only negatives are invalid.
	if t := raw.Timing; t != nil {
		check := func(field string, v int) {
			if v < 0 {
				errs = append(errs, ValidationError{
					Field:   "timing." + field,
					Message: fmt.Sprintf("cycle count %d must not be negative", v),
					Code:    ErrTimingRange,
				})
			}
		}
		check("power_on_reset_cycles", t.PowerOnResetCycles)
		check("reset_cycles", t.ResetCycles)
		check("settle_cycles", t.SettleCycles)
		check("ready_timeout_cycles", t.ReadyTimeoutCycles)
		check("drain_cycles", t.DrainCycles)
	}

	return errs
}
