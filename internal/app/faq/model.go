package faq

// Node is either a Leaf answering directly or a Branch holding a
// sub-menu.
type Node interface {
	faqNode()
}

// Leaf answers the question named by AnswerKey.
type Leaf struct {
	AnswerKey string
}

func (Leaf) faqNode() {}

// Branch is a sub-menu. SelfAnswer, when set, names an answer shown
// the moment the branch itself is opened.
type Branch struct {
	Entries    []Entry
	SelfAnswer string
}

func (Branch) faqNode() {}

// Entry keeps menu order, which a Go map would lose.
type Entry struct {
	Label string
	Node  Node
}

func (b *Branch) Find(label string) (Node, bool) {
	for _, e := range b.Entries {
		if e.Label == label {
			return e.Node, true
		}
	}
	return nil, false
}

func (b *Branch) Labels() []string {
	labels := make([]string, 0, len(b.Entries))
	for _, e := range b.Entries {
		labels = append(labels, e.Label)
	}
	return labels
}
