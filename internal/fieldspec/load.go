package fieldspec

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sift/internal/rules"
)

// Error code constants for load failures.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeUnsupported = "E002" // Unsupported file extension
	ErrCodeNoFiles     = "E003" // No CUE files in directory
	ErrCodeLoadFailed  = "E004" // CUE load or YAML parse failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeInvalid     = "E007" // Spec failed validation
)

// LoadError represents an error that occurred while loading a field-map file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads a field-map spec from a .cue, .yaml or .yml file, or from a
// directory holding a CUE package. The spec is validated before it is
// returned.
func Load(path string) (*Spec, error) {
	spec, err := Read(path)
	if err != nil {
		return nil, err
	}
	if errs := Validate(spec); len(errs) > 0 {
		return nil, validationLoadError(errs)
	}
	return spec, nil
}

// Read is Load without validation. Callers that report every problem run
// Validate themselves.
func Read(path string) (*Spec, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("field spec not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing field spec: %v", err)}
	}

	var spec *Spec
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case info.IsDir():
		spec, err = loadCUEDir(path)
	case ext == ".cue":
		spec, err = loadCUEFile(path)
	case ext == ".yaml" || ext == ".yml":
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
		}
		spec, err = ParseYAML(data)
	default:
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported field spec extension %q", ext)}
	}
	if err != nil {
		return nil, err
	}
	return spec, nil
}

// ParseCUE compiles CUE source into a Spec without validating it.
// filename is used for error positions.
func ParseCUE(filename, src string) (*Spec, error) {
	ctx := cuecontext.New()
	value := ctx.CompileString(src, cue.Filename(filename))
	if err := value.Validate(); err != nil {
		return nil, convertCompileError(formatCUEError(err), ErrCodeBuildFailed)
	}
	spec, err := CompileSpec(value)
	if err != nil {
		return nil, convertCompileError(err, ErrCodeGeneric)
	}
	return spec, nil
}

// ParseYAML decodes YAML into a Spec without validating it.
// Field declaration order and source lines are preserved.
func ParseYAML(data []byte) (*Spec, error) {
	var doc struct {
		Table       string    `yaml:"table"`
		Fields      yaml.Node `yaml:"fields"`
		DefaultSort []any     `yaml:"default_sort"`
		MaxRules    int       `yaml:"max_rules"`
		MaxDepth    int       `yaml:"max_depth"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}

	spec := &Spec{Table: doc.Table, MaxRules: doc.MaxRules, MaxDepth: doc.MaxDepth}
	if doc.Fields.Kind != yaml.MappingNode {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "fields must be a mapping"}
	}
	// Mapping node content alternates key, value.
	for i := 0; i+1 < len(doc.Fields.Content); i += 2 {
		key, value := doc.Fields.Content[i], doc.Fields.Content[i+1]
		var field Field
		if err := value.Decode(&field); err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("line %d: field %s: %v", key.Line, key.Value, err)}
		}
		field.Name = key.Value
		field.Line = key.Line
		spec.Fields = append(spec.Fields, field)
	}

	if doc.DefaultSort != nil {
		keys, err := rules.ParseSort(doc.DefaultSort)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("default_sort: %v", err)}
		}
		spec.DefaultSort = keys
	}
	return spec, nil
}

func loadCUEFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return ParseCUE(path, string(data))
}

func loadCUEDir(dir string) (*Spec, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("scanning %s: %v", dir, err)}
	}
	if len(matches) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Validate(); err != nil {
		return nil, convertCompileError(formatCUEError(err), ErrCodeBuildFailed)
	}
	spec, err := CompileSpec(value)
	if err != nil {
		return nil, convertCompileError(err, ErrCodeGeneric)
	}
	return spec, nil
}

// convertCompileError converts a CompileError to a LoadError with position info.
func convertCompileError(err error, code string) *LoadError {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    code,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: code, Message: err.Error()}
}

func validationLoadError(errs []ValidationError) *LoadError {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return &LoadError{Code: ErrCodeInvalid, Message: strings.Join(msgs, "; ")}
}
