package lambdastack

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Fixed configuration file names under the config directory.
const (
	inputFileName     = "input.json"
	outputFileName    = "output.json"
	secretsFileName   = "secret.json"
	transformFileName = "transform.json"

	// schemasDirName holds an arbitrary number of *.json schema files,
	// each of which becomes its own configuration profile.
	schemasDirName = "schemas"
)

// JSONLoader loads a JSON object from a file. Injecting it keeps resolution
// and planning free of hidden filesystem access in tests.
type JSONLoader interface {
	LoadJSON(path string) (map[string]any, error)
}

// FSLoader is the default loader backed by the local filesystem.
var FSLoader JSONLoader = osJSONLoader{}

// osJSONLoader is the default loader backed by the local filesystem.
type osJSONLoader struct{}

// LoadJSON reads and decodes a single JSON object.
func (osJSONLoader) LoadJSON(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// classifyLoadError maps a loader failure to the right PlanError kind:
// missing files are always KindFileNotFound, decode failures take the
// caller-supplied parse kind.
func classifyLoadError(path string, err error, parseKind ErrorKind) *PlanError {
	if errors.Is(err, os.ErrNotExist) {
		return wrapPlanError(KindFileNotFound, path, err)
	}
	return wrapPlanError(parseKind, path, err)
}

// FileSet holds the resolved config file locations for one planning run.
// It is constructed once by ResolveFiles and immutable afterward.
type FileSet struct {
	InputPath     string
	OutputPath    string
	SecretsPath   string
	TransformPath string

	// SchemaPaths is sorted so plans are deterministic regardless of
	// directory listing order.
	SchemaPaths []string

	// Secrets is the logical-name → ARN map loaded from secret.json.
	Secrets SecretsMap
}

// ProfilePaths returns every file that becomes a configuration profile, in
// plan order: schema files first, then the four fixed config files.
func (fs *FileSet) ProfilePaths() []string {
	paths := make([]string, 0, len(fs.SchemaPaths)+4)
	paths = append(paths, fs.SchemaPaths...)
	return append(paths, fs.InputPath, fs.OutputPath, fs.SecretsPath, fs.TransformPath)
}

// ResolveFiles derives the config file locations from cfg, verifies the
// fixed files exist, lists the schema directory, and loads the secrets map.
// Profile contents are loaded later, during planning.
func ResolveFiles(cfg *Config, loader JSONLoader) (*FileSet, error) {
	fs := &FileSet{
		InputPath:     filepath.Join(cfg.ConfigPath, inputFileName),
		OutputPath:    filepath.Join(cfg.ConfigPath, outputFileName),
		SecretsPath:   filepath.Join(cfg.ConfigPath, secretsFileName),
		TransformPath: filepath.Join(cfg.ConfigPath, transformFileName),
	}

	for _, path := range []string{fs.InputPath, fs.OutputPath, fs.SecretsPath, fs.TransformPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, classifyLoadError(path, err, KindFileNotFound)
		}
	}

	schemas, err := listSchemaFiles(filepath.Join(cfg.ConfigPath, schemasDirName))
	if err != nil {
		return nil, err
	}
	fs.SchemaPaths = schemas

	secrets, err := loadSecretsMap(loader, fs.SecretsPath)
	if err != nil {
		return nil, err
	}
	fs.Secrets = secrets

	return fs, nil
}

// listSchemaFiles returns the sorted *.json files in dir. A schema
// directory with no matching files is a hard validation error.
func listSchemaFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, wrapPlanError(KindFileNotFound, dir, err)
	}
	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	if len(files) == 0 {
		return nil, &PlanError{
			Kind:    KindEmptyDirectory,
			Subject: dir,
			Message: "no schema files found",
			Hint:    "add at least one *.json schema file",
		}
	}
	sort.Strings(files)
	return files, nil
}
