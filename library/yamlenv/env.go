// Package yamlenv lets config values be written either literally or as a
// reference to an environment variable: "${NAME}" or "${NAME:default}".
package yamlenv

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var reference = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)(?::(.*))?\}$`)

type Env[T any] struct {
	Value T
	// Name of the environment variable the value came from, empty for literals.
	Name string
}

func (e *Env[T]) UnmarshalYAML(node *yaml.Node) error {
	raw := strings.TrimSpace(node.Value)

	m := reference.FindStringSubmatch(raw)
	if node.Kind != yaml.ScalarNode || m == nil {
		return node.Decode(&e.Value)
	}

	e.Name = m[1]

	value, ok := os.LookupEnv(e.Name)
	if !ok {
		if m[2] == "" && !strings.Contains(raw, ":") {
			return fmt.Errorf("yamlenv: environment variable %s is not set (line %d)", e.Name, node.Line)
		}
		value = m[2]
	}

	if s, ok := any(&e.Value).(*string); ok {
		*s = value
		return nil
	}

	// decode the resolved string through yaml so ints and bools keep working
	var resolved yaml.Node
	if err := yaml.Unmarshal([]byte(value), &resolved); err != nil {
		return fmt.Errorf("yamlenv: %s: %w", e.Name, err)
	}
	if len(resolved.Content) == 0 {
		var zero T
		e.Value = zero
		return nil
	}

	if err := resolved.Content[0].Decode(&e.Value); err != nil {
		return fmt.Errorf("yamlenv: %s: %w", e.Name, err)
	}

	return nil
}

func (e *Env[T]) String() string {
	if e == nil {
		return "<nil>"
	}
	if e.Name != "" {
		return fmt.Sprintf("${%s}=%v", e.Name, e.Value)
	}
	return fmt.Sprint(e.Value)
}
