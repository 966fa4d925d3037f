package faq

import "fmt"

type Service interface {
	Greeting() string
	Root() *Branch
	Resolve(path []string) (*Branch, bool)
	Answer(key string) (string, bool)
}

type service struct {
	greeting string
	root     *Branch
	answers  map[string]string
}

func (s *service) Greeting() string {
	return s.greeting
}

func (s *service) Root() *Branch {
	return s.root
}

// Resolve walks a path of labels from the root. A stale path (e.g.
// after a config change) reports false so the caller can reset to root.
func (s *service) Resolve(path []string) (*Branch, bool) {
	current := s.root
	for _, label := range path {
		node, ok := current.Find(label)
		if !ok {
			return nil, false
		}
		branch, ok := node.(*Branch)
		if !ok {
			return nil, false
		}
		current = branch
	}
	return current, true
}

func (s *service) Answer(key string) (string, bool) {
	text, ok := s.answers[key]
	return text, ok
}

func (s *service) validate(b *Branch) error {
	if b.SelfAnswer != "" {
		if _, ok := s.answers[b.SelfAnswer]; !ok {
			return fmt.Errorf("menu references unknown answer key %q", b.SelfAnswer)
		}
	}
	for _, e := range b.Entries {
		switch n := e.Node.(type) {
		case Leaf:
			if _, ok := s.answers[n.AnswerKey]; !ok {
				return fmt.Errorf("menu entry %q references unknown answer key %q", e.Label, n.AnswerKey)
			}
		case *Branch:
			if err := s.validate(n); err != nil {
				return err
			}
		}
	}
	return nil
}
