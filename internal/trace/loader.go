package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Format identifies a trace file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// FormatFromPath picks the format from a file extension; unknown extensions are text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Load reads a trace file, choosing the decoder by extension.
func Load(path string) ([]Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	steps, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to decode trace %s: %w", path, err)
	}
	return steps, nil
}

// Decode reads all steps from r. Variable order inside each step is kept
// as written so that duplicate names resolve last-write-wins.
func Decode(r io.Reader, format Format) ([]Step, error) {
	switch format {
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(r)
	case FormatText:
		return decodeText(r)
	default:
		return nil, fmt.Errorf("unknown trace format %q", format)
	}
}

// decodeJSON accepts either a top-level array of step objects or
// {"steps": [...]}. gjson iterates object members in document order,
// duplicates included.
func decodeJSON(data []byte) ([]Step, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if root.IsObject() {
		root = root.Get("steps")
	}
	if !root.IsArray() {
		return nil, fmt.Errorf(`expected an array of steps or {"steps": [...]}`)
	}

	steps := []Step{}
	var err error
	root.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			err = fmt.Errorf("step %d is not an object", len(steps))
			return false
		}
		step := Step{}
		item.ForEach(func(key, value gjson.Result) bool {
			step = append(step, Variable{Name: key.String(), Value: jsonValue(value)})
			return true
		})
		steps = append(steps, step)
		return true
	})
	if err != nil {
		return nil, err
	}
	return steps, nil
}

func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Number:
		return json.Number(v.Raw)
	case gjson.String:
		return v.Str
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Null:
		return nil
	default:
		return v.Raw
	}
}

// decodeYAML accepts a sequence of mappings, optionally under a "steps" key.
// It walks yaml.Node trees so mapping order is preserved.
func decodeYAML(r io.Reader) ([]Step, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return []Step{}, nil
		}
		return nil, err
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind == yaml.MappingNode {
		var found *yaml.Node
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value == "steps" {
				found = root.Content[i+1]
			}
		}
		if found == nil {
			return nil, fmt.Errorf(`expected a sequence of steps or a "steps" key`)
		}
		root = found
	}
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("expected a sequence of steps, line %d", root.Line)
	}

	steps := make([]Step, 0, len(root.Content))
	for i, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("step %d is not a mapping, line %d", i, item.Line)
		}
		step := make(Step, 0, len(item.Content)/2)
		for j := 0; j+1 < len(item.Content); j += 2 {
			step = append(step, Variable{Name: item.Content[j].Value, Value: yamlValue(item.Content[j+1])})
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func yamlValue(n *yaml.Node) any {
	if n.Kind != yaml.ScalarNode {
		return fmt.Sprintf("<%s at line %d>", n.ShortTag(), n.Line)
	}
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		b, _ := strconv.ParseBool(n.Value)
		return b
	default:
		return n.Value
	}
}

var assignSpacing = regexp.MustCompile(`\s*=\s*`)

// decodeText reads the plain-text trace printout: whitespace separated
// name=value tokens. Lines starting with "State" open a new step; when the
// file has none, blank lines separate steps. Transition and Delay lines
// are skipped since their guards look like assignments.
func decodeText(r io.Reader) ([]Step, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	steps := []Step{}
	var cur Step
	open := false
	explicit := false

	flush := func() {
		if open {
			steps = append(steps, cur)
		}
		cur = nil
		open = false
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "State"):
			explicit = true
			flush()
			open = true
			cur = Step{}
			line = strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(line, "State")), ":")
		case line == "":
			if !explicit {
				flush()
			}
			continue
		case strings.HasPrefix(line, "Transition"), strings.HasPrefix(line, "Delay"), strings.HasPrefix(line, "#"):
			continue
		}

		line = assignSpacing.ReplaceAllString(line, "=")
		for _, tok := range strings.Fields(line) {
			name, value, ok := strings.Cut(tok, "=")
			if !ok || name == "" || strings.Contains(value, "=") {
				continue
			}
			if !open {
				open = true
				cur = Step{}
			}
			cur = append(cur, Variable{Name: name, Value: strings.TrimSuffix(value, ",")})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return steps, nil
}
