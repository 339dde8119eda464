package lambdastack

import (
	"fmt"
	"sort"
)

// SecretsMap maps a secret's logical name to its Secrets Manager ARN,
// as declared in secret.json.
type SecretsMap map[string]string

// SortedNames returns the logical names in lexicographic order so the
// per-secret grants appear in a deterministic order in the plan.
func (m SecretsMap) SortedNames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadSecretsMap loads secret.json and checks every value parses as an
// ARN. The original template never enforced this and let malformed ARNs
// surface as provisioning-time failures.
func loadSecretsMap(loader JSONLoader, path string) (SecretsMap, error) {
	doc, err := loader.LoadJSON(path)
	if err != nil {
		return nil, classifyLoadError(path, err, KindParseError)
	}

	m := make(SecretsMap, len(doc))
	for name, v := range doc {
		s, ok := v.(string)
		if !ok {
			return nil, newPlanError(KindParseError, path,
				fmt.Sprintf("secret %q: value must be a string ARN", name))
		}
		if err := validateARN("secret "+name, s); err != nil {
			return nil, err
		}
		m[name] = s
	}
	return m, nil
}
