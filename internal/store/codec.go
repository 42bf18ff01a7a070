package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/toothdex/internal/pattern"
)

//go:embed schema.cue
var schemaCUE string

// cue.Context is not safe for concurrent use; schemaMu guards every build
// and unify against schemaCtx.
var (
	schemaOnce sync.Once
	schemaMu   sync.Mutex
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

// documentSchema compiles schema.cue once per process.
func documentSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(schemaCUE, cue.Filename("schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#Document"))
		if err := schemaDef.Err(); err != nil {
			schemaErr = fmt.Errorf("lookup #Document: %w", err)
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// validateDocument checks raw JSON against the #Document definition.
func validateDocument(data []byte) error {
	ctx, def, err := documentSchema()
	if err != nil {
		return err
	}

	expr, err := cuejson.Extract("document.json", data)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	schemaMu.Lock()
	defer schemaMu.Unlock()

	doc := ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("build document: %w", err)
	}
	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema violation: %s", cueerrors.Details(err, nil))
	}
	return nil
}

// Encode serializes s as the persisted document: indented JSON with keys
// in sorted order and non-ASCII text left unescaped.
func Encode(s *State) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a persisted document, validates it against the schema and
// the record invariants, and returns the state. Corrupt input is an error;
// it is never replaced by an empty state.
func Decode(data []byte) (*State, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	s := NewState()
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if s.Patterns == nil {
		s.Patterns = make(map[pattern.Key]*PatternRecord)
	}
	if s.RarePatterns == nil {
		s.RarePatterns = []RareEntry{}
	}

	if err := Check(s); err != nil {
		return nil, fmt.Errorf("invariant violation: %w", err)
	}
	return s, nil
}
