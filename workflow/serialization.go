package workflow

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/akaoio/nodeflow/value"
)

// document mirrors the external workflow document shape accepted by the
// Parser, so a serialized definition parses back to an equivalent one.
type document struct {
	ID                string               `yaml:"id" json:"id"`
	Name              string               `yaml:"name" json:"name"`
	Description       string               `yaml:"description,omitempty" json:"description,omitempty"`
	Version           string               `yaml:"version,omitempty" json:"version,omitempty"`
	DefaultParameters map[string]any       `yaml:"default_parameters,omitempty" json:"default_parameters,omitempty"`
	InputSchema       map[string]string    `yaml:"input_schema,omitempty" json:"input_schema,omitempty"`
	OutputSchema      map[string]string    `yaml:"output_schema,omitempty" json:"output_schema,omitempty"`
	Nodes             []nodeDocument       `yaml:"nodes" json:"nodes"`
	Connections       []connectionDocument `yaml:"connections,omitempty" json:"connections,omitempty"`
}

type nodeDocument struct {
	ID          string         `yaml:"id" json:"id"`
	Type        string         `yaml:"type" json:"type"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Enabled     *bool          `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	RetryCount  int            `yaml:"retry_count,omitempty" json:"retry_count,omitempty"`
	Timeout     int64          `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Parameters  map[string]any `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	DependsOn   []string       `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
}

type connectionDocument struct {
	FromNode            string `yaml:"from_node" json:"from_node"`
	FromOutput          string `yaml:"from_output,omitempty" json:"from_output,omitempty"`
	ToNode              string `yaml:"to_node" json:"to_node"`
	ToInput             string `yaml:"to_input,omitempty" json:"to_input,omitempty"`
	TransformExpression string `yaml:"transform_expression,omitempty" json:"transform_expression,omitempty"`
}

// toDocument converts the definition into its serializable form.
func (d *Definition) toDocument() document {
	doc := document{
		ID:          d.id,
		Name:        d.name,
		Description: d.description,
		Version:     d.version,
	}
	if len(d.defaultParams) > 0 {
		doc.DefaultParameters = value.ToAnyMap(d.defaultParams)
	}
	if len(d.inputSchema) > 0 {
		doc.InputSchema = d.inputSchema
	}
	if len(d.outputSchema) > 0 {
		doc.OutputSchema = d.outputSchema
	}

	doc.Nodes = make([]nodeDocument, 0, len(d.nodes))
	for _, n := range d.nodes {
		nd := nodeDocument{
			ID:          n.ID,
			Type:        n.Type,
			Description: n.Description,
			RetryCount:  n.RetryCount,
			DependsOn:   n.DependsOn,
		}
		if !n.Enabled {
			disabled := false
			nd.Enabled = &disabled
		}
		if n.Timeout > 0 && n.Timeout != DefaultNodeTimeout {
			nd.Timeout = n.Timeout.Milliseconds()
		}
		if len(n.Parameters) > 0 {
			nd.Parameters = value.ToAnyMap(n.Parameters)
		}
		doc.Nodes = append(doc.Nodes, nd)
	}

	for _, c := range d.connections {
		doc.Connections = append(doc.Connections, connectionDocument{
			FromNode:            c.FromNodeID,
			FromOutput:          c.FromOutput,
			ToNode:              c.ToNodeID,
			ToInput:             c.ToInput,
			TransformExpression: c.TransformExpression,
		})
	}
	return doc
}

// ToYAML serializes the definition to a YAML document equivalent to the
// one the Parser accepts.
func (d *Definition) ToYAML() (string, error) {
	data, err := yaml.Marshal(d.toDocument())
	if err != nil {
		return "", fmt.Errorf("marshal workflow to YAML: %w", err)
	}
	return string(data), nil
}

// ToJSON serializes the definition to an indented JSON document.
func (d *Definition) ToJSON() (string, error) {
	data, err := json.MarshalIndent(d.toDocument(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal workflow to JSON: %w", err)
	}
	return string(data), nil
}

// SaveToYAMLFile writes the YAML form of the definition to a file.
func (d *Definition) SaveToYAMLFile(path string) error {
	out, err := d.ToYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write workflow file: %w", err)
	}
	return nil
}

// SaveToJSONFile writes the JSON form of the definition to a file.
func (d *Definition) SaveToJSONFile(path string) error {
	out, err := d.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write workflow file: %w", err)
	}
	return nil
}
