package starlark

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/starview-labs/starview/pkg/backend"
	"go.starlark.net/starlark"
)

// Compile parses and compiles one view source against the request's
// references and emits a serialized module image. Syntax and resolution
// problems come back as diagnostics inside the EmitResult; the error return
// is reserved for environment problems such as foreign references or a
// serialization failure.
func (r *Runtime) Compile(req backend.CompileRequest) (*backend.EmitResult, error) {
	env, err := compileEnvironment(req.References)
	if err != nil {
		return nil, err
	}

	f, err := r.opts.Parse(req.Path, []byte(req.Source), 0)
	if err != nil {
		return &backend.EmitResult{Diagnostics: diagnosticsFromError(err)}, nil
	}

	prog, err := starlark.FileProgram(f, env.Has)
	if err != nil {
		return &backend.EmitResult{Diagnostics: diagnosticsFromError(err)}, nil
	}

	var buf bytes.Buffer
	if err := prog.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize module %s: %w", req.Module, err)
	}
	image, err := encodeImage(imageHeader{Module: req.Module, Path: req.Path}, buf.Bytes())
	if err != nil {
		return nil, err
	}

	res := &backend.EmitResult{Success: true, Image: image}
	if req.IncludeSymbols {
		symbols, err := json.Marshal(debugSidecar{
			Module: req.Module,
			Path:   req.Path,
			Source: req.Source,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode debug symbols for %s: %w", req.Module, err)
		}
		res.Symbols = symbols
	}

	r.logger.Debug("emitted module",
		"module", req.Module,
		"document", req.Path,
		"bytes", len(image),
	)
	return res, nil
}

// compileEnvironment merges the exports of every reference, in request
// order. When two references export the same symbol the later one wins.
func compileEnvironment(refs []backend.Reference) (starlark.StringDict, error) {
	env := make(starlark.StringDict)
	for _, ref := range refs {
		sref, ok := ref.(*Reference)
		if !ok {
			return nil, fmt.Errorf("reference %s was not produced by the starlark runtime", ref.Name())
		}
		lib, ok := sref.library()
		if !ok {
			return nil, fmt.Errorf("reference %s carries foreign metadata", ref.Name())
		}
		for sym, value := range lib.Exports() {
			env[sym] = value
		}
	}
	return env, nil
}
