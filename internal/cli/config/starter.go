package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/SterlingPeet/fprime-extras/pkg/core"
	"gopkg.in/yaml.v3"
)

// Starter renders a commented starter config file. Every known identifier
// is listed in the comment above exclusions so it can be copied in.
func Starter(infos []core.RuleInfo) ([]byte, error) {
	var ids strings.Builder
	ids.WriteString("Identifiers that can be excluded or given a severity:")
	for _, info := range infos {
		fmt.Fprintf(&ids, "\n  %s (%s, %s)", info.ID, info.Stage, strings.ToLower(info.DefaultSeverity.String()))
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key, comment string, value *yaml.Node) {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key, HeadComment: comment},
			value,
		)
	}
	emptySeq := func() *yaml.Node { return &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle} }
	emptyMap := func() *yaml.Node { return &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle} }
	scalar := func(v, tag string) *yaml.Node { return &yaml.Node{Kind: yaml.ScalarNode, Value: v, Tag: tag} }

	add("exclusions", ids.String(), emptySeq())
	add("filters", "Topology problems whose identifier or location matches are dropped,\n"+
		"e.g. Ref.rateGroup1Comp.* or Ref/**", emptySeq())
	add("severity", "Severity overrides, e.g. unconnected-port: error", emptyMap())
	add("args", "Extra check arguments, e.g. port-ignore: \"*.tlmOut,*.logOut\"", emptyMap())
	add("fprime_root", "F Prime checkout used to resolve imports. Searched for upward when empty.", scalar("", "!!str"))
	add("log_level", "DEBUG, INFO, WARNING, ERROR or CRITICAL", scalar(DefaultLogLevel, "!!str"))
	add("output", "auto, text or json", scalar(DefaultOutput, "!!str"))
	add("jobs", "Files linted in parallel", scalar(fmt.Sprint(DefaultJobs), "!!int"))

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to render starter config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
