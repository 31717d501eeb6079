package query

// QueryField lists the distinct terms a query uses in one field, in first
// seen order.
type QueryField struct {
	Name  string
	Terms []string
}

type QueryContext struct {
	Fields []*QueryField
}

// NewQueryContext registers every term of the tree.
func NewQueryContext(root Node) *QueryContext {
	context := &QueryContext{Fields: make([]*QueryField, 0, 4)}
	context.registerTree(root)
	return context
}

func (c *QueryContext) registerTree(node Node) {
	if node == nil {
		return
	}

	if term, ok := node.(*TermNode); ok {
		c.RegisterTerm(term.Field, term.Term)
		return
	}

	for _, arg := range node.Args() {
		c.registerTree(arg)
	}
}

func (c *QueryContext) RegisterTerm(fieldName string, term string) (int, int) {
	for i, field := range c.Fields {
		if field.Name == fieldName {
			for j, _term := range field.Terms {
				if _term == term {
					return i, j
				}
			}

			j := len(field.Terms)
			field.Terms = append(field.Terms, term)

			return i, j
		}
	}

	i := len(c.Fields)

	terms := make([]string, 1, 10)
	terms[0] = term

	c.Fields = append(c.Fields, &QueryField{Name: fieldName, Terms: terms})

	return i, 0
}

// Terms returns nil when the query has no term in fieldName.
func (c *QueryContext) Terms(fieldName string) []string {
	for _, field := range c.Fields {
		if field.Name == fieldName {
			return field.Terms
		}
	}
	return nil
}
