package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Load reads overrides from path on top of Default and validates the result.
// Files ending in .cue are evaluated with CUE; .yaml and .yml are decoded as
// YAML. Fields absent from the file keep their default values. An empty path
// returns the defaults.
func Load(path string) (Policy, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("reading policy file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		err = decodeCUE(path, data, &p)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	default:
		return Policy{}, fmt.Errorf("unsupported policy file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return Policy{}, fmt.Errorf("decoding policy file %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy %s: %w", path, err)
	}
	return p, nil
}

func decodeCUE(path string, data []byte, into *Policy) error {
	ctx := cuecontext.New()
	val := ctx.CompileBytes(data, cue.Filename(path))
	if err := val.Err(); err != nil {
		return err
	}
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return val.Decode(into)
}
