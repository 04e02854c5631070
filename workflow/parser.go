package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/akaoio/nodeflow/value"
)

var (
	validNodeIDPattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	validNodeTypePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)
	paramRefPattern      = regexp.MustCompile(`\$\{([^}]+)\}`)
)

// Parser builds a validated Definition from a generic structured
// document (YAML or JSON). Structural problems are accumulated as
// errors and warnings; a malformed entry is skipped without aborting
// the rest of the parse.
type Parser struct {
	errors   []string
	warnings []string
}

// NewParser creates a workflow parser.
func NewParser() *Parser {
	return &Parser{}
}

// Errors returns the accumulated parse and validation errors.
func (p *Parser) Errors() []string { return p.errors }

// Warnings returns the accumulated warnings.
func (p *Parser) Warnings() []string { return p.warnings }

// HasErrors reports whether any error was recorded.
func (p *Parser) HasErrors() bool { return len(p.errors) > 0 }

// HasWarnings reports whether any warning was recorded.
func (p *Parser) HasWarnings() bool { return len(p.warnings) > 0 }

// ClearErrors discards accumulated errors and warnings.
func (p *Parser) ClearErrors() {
	p.errors = nil
	p.warnings = nil
}

func (p *Parser) addError(msg string)   { p.errors = append(p.errors, msg) }
func (p *Parser) addWarning(msg string) { p.warnings = append(p.warnings, msg) }

// ParseYAML parses a YAML workflow document.
func (p *Parser) ParseYAML(data []byte) (*Definition, error) {
	p.ClearErrors()

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		p.addError("YAML parsing failed: " + err.Error())
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return p.parseDocument(doc), nil
}

// ParseYAMLFile parses a YAML workflow document from a file.
func (p *Parser) ParseYAMLFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.addError("Cannot open file: " + path)
		return nil, fmt.Errorf("read workflow file: %w", err)
	}
	return p.ParseYAML(data)
}

// ParseJSON parses a JSON workflow document.
func (p *Parser) ParseJSON(data []byte) (*Definition, error) {
	p.ClearErrors()

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		p.addError("JSON parsing failed: " + err.Error())
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return p.parseDocument(doc), nil
}

// ParseJSONFile parses a JSON workflow document from a file.
func (p *Parser) ParseJSONFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.addError("Cannot open file: " + path)
		return nil, fmt.Errorf("read workflow file: %w", err)
	}
	return p.ParseJSON(data)
}

// parseDocument converts a generic decoded tree into a Definition and
// re-runs Definition.Validate, surfacing every error found.
func (p *Parser) parseDocument(doc map[string]any) *Definition {
	def := NewDefinition(stringField(doc, "id"), stringField(doc, "name"))
	def.SetDescription(stringField(doc, "description"))
	def.SetVersion(stringField(doc, "version"))

	if params, ok := doc["default_parameters"].(map[string]any); ok {
		for name, raw := range params {
			def.SetDefaultParameter(name, value.FromAny(raw))
		}
	}
	if schema, ok := doc["input_schema"].(map[string]any); ok {
		for name, raw := range schema {
			def.SetInputSchema(name, fmt.Sprint(raw))
		}
	}
	if schema, ok := doc["output_schema"].(map[string]any); ok {
		for name, raw := range schema {
			def.SetOutputSchema(name, fmt.Sprint(raw))
		}
	}

	if rawNodes, ok := doc["nodes"].([]any); ok {
		for _, rawNode := range rawNodes {
			if node, ok := p.parseNode(rawNode); ok {
				def.AddNode(node)
			}
		}
	}
	if rawConns, ok := doc["connections"].([]any); ok {
		for _, rawConn := range rawConns {
			if conn, ok := p.parseConnection(rawConn); ok {
				def.AddConnection(conn)
			}
		}
	}

	for _, err := range def.Validate() {
		p.addError(err)
	}
	return def
}

// parseNode parses one node entry. A missing required field records an
// error and skips the node; siblings still parse.
func (p *Parser) parseNode(raw any) (Node, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		p.addError("Node must be an object")
		return Node{}, false
	}

	id, ok := obj["id"].(string)
	if !ok || id == "" {
		p.addError("Node missing required 'id' field")
		return Node{}, false
	}
	nodeType, ok := obj["type"].(string)
	if !ok || nodeType == "" {
		p.addError("Node missing required 'type' field")
		return Node{}, false
	}

	node := NewNode(id, nodeType)
	if desc, ok := obj["description"].(string); ok {
		node.Description = desc
	}
	if enabled, ok := obj["enabled"].(bool); ok {
		node.Enabled = enabled
	}
	if retries, ok := intField(obj, "retry_count"); ok {
		node.RetryCount = int(retries)
	}
	if timeoutMs, ok := intField(obj, "timeout"); ok {
		node.Timeout = time.Duration(timeoutMs) * time.Millisecond
	}
	if params, ok := obj["parameters"].(map[string]any); ok {
		for name, rawParam := range params {
			node.Parameters[name] = value.FromAny(rawParam)
		}
	}
	if deps, ok := obj["depends_on"].([]any); ok {
		for _, rawDep := range deps {
			if dep, ok := rawDep.(string); ok {
				node.DependsOn = append(node.DependsOn, dep)
			} else {
				p.addWarning(fmt.Sprintf("Node %s: ignoring non-string depends_on entry", id))
			}
		}
	}
	return node, true
}

// parseConnection parses one connection entry. from_output defaults to
// "output" and to_input defaults to "input".
func (p *Parser) parseConnection(raw any) (Connection, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		p.addError("Connection must be an object")
		return Connection{}, false
	}

	fromNode, ok := obj["from_node"].(string)
	if !ok || fromNode == "" {
		p.addError("Connection missing required 'from_node' field")
		return Connection{}, false
	}
	toNode, ok := obj["to_node"].(string)
	if !ok || toNode == "" {
		p.addError("Connection missing required 'to_node' field")
		return Connection{}, false
	}

	conn := NewConnection(fromNode, "output", toNode, "input")
	if fromOutput, ok := obj["from_output"].(string); ok && fromOutput != "" {
		conn.FromOutput = fromOutput
	}
	if toInput, ok := obj["to_input"].(string); ok && toInput != "" {
		conn.ToInput = toInput
	}
	if transform, ok := obj["transform_expression"].(string); ok {
		conn.TransformExpression = transform
	}
	return conn, true
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func intField(obj map[string]any, key string) (int64, bool) {
	switch n := obj[key].(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// IsValidNodeID reports whether an id starts with a letter, contains
// only letters, digits, underscores or hyphens, and is at most 100
// characters long.
func IsValidNodeID(nodeID string) bool {
	if nodeID == "" || len(nodeID) > 100 {
		return false
	}
	return validNodeIDPattern.MatchString(nodeID)
}

// IsValidNodeType reports whether a type name is valid. Types follow the
// same rules as ids but additionally allow dots for namespacing.
func IsValidNodeType(nodeType string) bool {
	if nodeType == "" || len(nodeType) > 100 {
		return false
	}
	return validNodeTypePattern.MatchString(nodeType)
}

// ExtractParameterReferences returns every ${name} placeholder in s, in
// order of first appearance, duplicates preserved.
func ExtractParameterReferences(s string) []string {
	matches := paramRefPattern.FindAllStringSubmatch(s, -1)
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, m[1])
	}
	return refs
}
