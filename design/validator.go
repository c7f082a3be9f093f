package design

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSource []byte

// validator checks decoded design documents against the embedded schema.
type validator struct {
	ctx    *cue.Context
	schema cue.Value
}

var (
	sharedValidator *validator
	validatorErr    error
	validatorOnce   sync.Once
	validatorLock   sync.Mutex
)

func newValidator() (*validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &validator{ctx: ctx, schema: schema}, nil
}

func getValidator() (*validator, error) {
	validatorOnce.Do(func() {
		sharedValidator, validatorErr = newValidator()
	})
	return sharedValidator, validatorErr
}

// validate checks that data, as decoded from YAML, is a #Design.
func (v *validator) validate(data any) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling document to JSON: %w", err)
	}

	// A cue.Context is not safe for concurrent use.
	validatorLock.Lock()
	defer validatorLock.Unlock()

	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return fmt.Errorf("compiling document as CUE: %w", dataValue.Err())
	}

	def := v.schema.LookupPath(cue.ParsePath("#Design"))
	if def.Err() != nil {
		return fmt.Errorf("looking up #Design definition: %w", def.Err())
	}

	unified := def.Unify(dataValue)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}
