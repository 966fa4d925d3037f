package faq

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Greeting string            `yaml:"greeting"`
	Menu     yaml.Node         `yaml:"menu"`
	Answers  map[string]string `yaml:"answers"`
}

// Load reads the FAQ tree from a YAML file. Menu order in the file is
// the order buttons appear in the bot keyboard.
func Load(path string) (Service, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read FAQ file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (Service, error) {
	var file fileFormat
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse FAQ file: %w", err)
	}

	if file.Menu.Kind == 0 {
		return nil, fmt.Errorf("FAQ file has no menu section")
	}

	root, err := decodeBranch(&file.Menu, "")
	if err != nil {
		return nil, err
	}
	if len(root.Entries) == 0 {
		return nil, fmt.Errorf("FAQ menu is empty")
	}

	svc := &service{
		greeting: file.Greeting,
		root:     root,
		answers:  file.Answers,
	}
	if err := svc.validate(root); err != nil {
		return nil, err
	}
	return svc, nil
}

func decodeBranch(n *yaml.Node, selfAnswer string) (*Branch, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("menu node at line %d: expected a mapping", n.Line)
	}

	branch := &Branch{SelfAnswer: selfAnswer}
	for i := 0; i+1 < len(n.Content); i += 2 {
		label := n.Content[i].Value
		node, err := decodeNode(n.Content[i+1], label)
		if err != nil {
			return nil, err
		}
		branch.Entries = append(branch.Entries, Entry{Label: label, Node: node})
	}
	return branch, nil
}

func decodeNode(n *yaml.Node, label string) (Node, error) {
	var entry struct {
		Answer string    `yaml:"answer"`
		Items  yaml.Node `yaml:"items"`
	}
	if err := n.Decode(&entry); err != nil {
		return nil, fmt.Errorf("menu entry %q: %w", label, err)
	}

	if entry.Items.Kind != 0 {
		return decodeBranch(&entry.Items, entry.Answer)
	}
	if entry.Answer == "" {
		return nil, fmt.Errorf("menu entry %q has neither answer nor items", label)
	}
	return Leaf{AnswerKey: entry.Answer}, nil
}
