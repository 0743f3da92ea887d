package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corwinn/libwind-ffd/internal/expr"
	"github.com/corwinn/libwind-ffd/internal/ffderr"
	"github.com/corwinn/libwind-ffd/internal/lexer"
	"github.com/corwinn/libwind-ffd/internal/token"
)

// Parse drives the Lexer by keyword-dispatched recursive descent (§4.2),
// building a Graph of unresolved schema nodes, then runs the Reference
// Resolver (§4.3) over it before returning.
func Parse(description []byte, opts ...ParseOption) (*Graph, error) {
	b := defaultBudgets()
	for _, o := range opts {
		o(&b)
	}
	l, err := lexer.New(description)
	if err != nil {
		return nil, err
	}
	p := &parser{l: l, g: newGraph(), b: b}
	if err := p.parseTop(); err != nil {
		return nil, err
	}
	if p.g.Format == nil {
		return nil, ffderr.NewSemantic(token.Position{}, "", "no format node (§3.1 requires exactly one)")
	}
	if err := resolve(p.g); err != nil {
		return nil, err
	}
	return p.g, nil
}

type parser struct {
	l            *lexer.Lexer
	g            *Graph
	b            budgets
	pendingAttrs []string
}

func (p *parser) takeAttrs() []string {
	a := p.pendingAttrs
	p.pendingAttrs = nil
	return a
}

func (p *parser) parseTop() error {
	for {
		t, err := p.l.Peek()
		if err != nil {
			return err
		}
		switch t.Kind {
		case lexer.EOF:
			return nil
		case lexer.NEWLINE:
			if _, err := p.l.Next(); err != nil {
				return err
			}
		case lexer.LBRACKET:
			body, _, err := p.l.CaptureBracketAttr()
			if err != nil {
				return err
			}
			p.pendingAttrs = append(p.pendingAttrs, body)
			if err := p.expectEOL(); err != nil {
				return err
			}
		case lexer.QUESTION:
			if err := p.skipReservedBlock(); err != nil {
				return err
			}
		case lexer.KwType:
			if _, err := p.l.Next(); err != nil {
				return err
			}
			if err := p.parseType(); err != nil {
				return err
			}
		case lexer.KwConst:
			if _, err := p.l.Next(); err != nil {
				return err
			}
			if err := p.parseConst(); err != nil {
				return err
			}
		case lexer.KwEnum:
			if _, err := p.l.Next(); err != nil {
				return err
			}
			if err := p.parseEnum(); err != nil {
				return err
			}
		case lexer.KwStruct:
			if _, err := p.l.Next(); err != nil {
				return err
			}
			if err := p.parseStruct(false); err != nil {
				return err
			}
		case lexer.KwFormat:
			if _, err := p.l.Next(); err != nil {
				return err
			}
			if err := p.parseStruct(true); err != nil {
				return err
			}
		case lexer.IDENT:
			if s := t.String(); s != "list" && s != "table" {
				return ffderr.NewSyntax(t.Pos, "unexpected token %s at top level", t.Kind)
			}
			if err := p.skipReservedBlock(); err != nil {
				return err
			}
		default:
			return ffderr.NewSyntax(t.Pos, "unexpected token %s at top level", t.Kind)
		}
	}
}

// skipReservedBlock consumes "??? | list | table" directives up to a
// blank-line/EOF terminator (§4.1: "reserved; skip until double EOL").
func (p *parser) skipReservedBlock() error {
	for {
		t, err := p.l.Next()
		if err != nil {
			return err
		}
		if t.Kind == lexer.EOF {
			return nil
		}
		if t.Kind == lexer.NEWLINE {
			n, err := p.l.SkipBlankRun()
			if err != nil {
				return err
			}
			if n >= 1 {
				return nil
			}
			peek, err := p.l.Peek()
			if err != nil {
				return err
			}
			if peek.Kind == lexer.EOF {
				return nil
			}
		}
	}
}

func (p *parser) expectIdent() (string, token.Position, error) {
	t, err := p.l.Next()
	if err != nil {
		return "", token.Position{}, err
	}
	if t.Kind != lexer.IDENT {
		return "", t.Pos, ffderr.NewSyntax(t.Pos, "expected identifier, got %s", t.Kind)
	}
	return t.String(), t.Pos, nil
}

// expectEOL consumes the token ending the current directive line: a
// NEWLINE or EOF.
func (p *parser) expectEOL() error {
	t, err := p.l.Peek()
	if err != nil {
		return err
	}
	if t.Kind == lexer.EOF {
		return nil
	}
	if t.Kind != lexer.NEWLINE {
		return ffderr.NewSyntax(t.Pos, "expected end of line, got %s", t.Kind)
	}
	_, err = p.l.Next()
	return err
}

// maybeGuard captures and parses a trailing "(EXPR)" guard, if present.
func (p *parser) maybeGuard() (expr.Node, error) {
	t, err := p.l.Peek()
	if err != nil {
		return nil, err
	}
	if t.Kind != lexer.LPAREN {
		return nil, nil
	}
	body, pos, err := p.l.CaptureParen()
	if err != nil {
		return nil, err
	}
	depth := 0
	for _, c := range body {
		if c == '(' {
			depth++
			if depth > p.b.maxExprDepth {
				return nil, ffderr.NewSyntax(pos, "expression nesting exceeds max depth %d", p.b.maxExprDepth)
			}
		} else if c == ')' {
			depth--
		}
	}
	n, err := expr.Parse(string(body))
	if err != nil {
		return nil, ffderr.NewSyntax(pos, "%s", err)
	}
	return n, nil
}

// forEachBodyLine repeatedly calls line for each indented body line of an
// enum/struct/format, stopping at a blank line, EOF, or the start of the
// next top-level directive (column 1) - §4.2's "until blank line/EOF".
func (p *parser) forEachBodyLine(line func() error) error {
	for {
		t, err := p.l.Peek()
		if err != nil {
			return err
		}
		if t.Kind == lexer.EOF || t.Kind == lexer.NEWLINE {
			return nil
		}
		if t.Pos.Column == 1 {
			return nil
		}
		if err := line(); err != nil {
			return err
		}
		if err := p.expectEOL(); err != nil {
			return err
		}
		n, err := p.l.SkipBlankRun()
		if err != nil {
			return err
		}
		if n >= 1 {
			return nil
		}
	}
}

func (p *parser) parseType() error {
	name, pos, err := p.expectIdent()
	if err != nil {
		return err
	}
	n := &Node{Kind: KindType, Name: name, Pos: pos, Attrs: p.takeAttrs()}

	t, err := p.l.Peek()
	if err != nil {
		return err
	}
	switch {
	case t.Kind == lexer.IDENT:
		if _, err := p.l.Next(); err != nil {
			return err
		}
		n.AliasName = t.String()
	case t.Kind == lexer.DOT || t.Kind == lexer.INT:
		if t.Kind == lexer.DOT {
			if _, err := p.l.Next(); err != nil {
				return err
			}
			n.Float = true
		}
		szTok, err := p.l.Next()
		if err != nil {
			return err
		}
		if szTok.Kind != lexer.INT {
			return ffderr.NewSyntax(szTok.Pos, "expected type size, got %s", szTok.Kind)
		}
		v, err := parseIntToken(szTok.String())
		if err != nil {
			return ffderr.NewSyntax(szTok.Pos, "%s", err)
		}
		n.Signed = v < 0
		if v < 0 {
			v = -v
		}
		n.Size = v
	default:
		return ffderr.NewSyntax(pos, "expected type size or alias after 'type %s'", name)
	}

	g, err := p.maybeGuard()
	if err != nil {
		return err
	}
	n.Guard = g
	if err := p.expectEOL(); err != nil {
		return err
	}
	p.g.add(n)
	return nil
}

func (p *parser) parseConst() error {
	name, pos, err := p.expectIdent()
	if err != nil {
		return err
	}
	n := &Node{Kind: KindConst, Name: name, Pos: pos, Attrs: p.takeAttrs()}
	lit, err := p.l.Next()
	if err != nil {
		return err
	}
	switch lit.Kind {
	case lexer.STRING:
		n.IsString = true
		n.StrValue = lit.String()
	case lexer.INT:
		v, err := parseIntToken(lit.String())
		if err != nil {
			return ffderr.NewSyntax(lit.Pos, "%s", err)
		}
		n.IntValue = v
	default:
		return ffderr.NewSyntax(lit.Pos, "expected const literal, got %s", lit.Kind)
	}
	g, err := p.maybeGuard()
	if err != nil {
		return err
	}
	n.Guard = g
	if err := p.expectEOL(); err != nil {
		return err
	}
	p.g.add(n)
	return nil
}

func (p *parser) parseEnum() error {
	name, pos, err := p.expectIdent()
	if err != nil {
		return err
	}
	typeName, _, err := p.expectIdent()
	if err != nil {
		return err
	}
	n := &Node{Kind: KindEnum, Name: name, Pos: pos, BaseTypeName: typeName, Attrs: p.takeAttrs()}
	g, err := p.maybeGuard()
	if err != nil {
		return err
	}
	n.Guard = g
	if err := p.expectEOL(); err != nil {
		return err
	}

	next := 0
	err = p.forEachBodyLine(func() error {
		if len(n.Items) >= p.b.maxEnumItems {
			return ffderr.NewSemantic(n.Pos, n.Name, "enum exceeds max %d items", p.b.maxEnumItems)
		}
		itemName, _, err := p.expectIdent()
		if err != nil {
			return err
		}
		val := next
		t, err := p.l.Peek()
		if err != nil {
			return err
		}
		if t.Kind == lexer.INT {
			if _, err := p.l.Next(); err != nil {
				return err
			}
			val, err = parseIntToken(t.String())
			if err != nil {
				return ffderr.NewSyntax(t.Pos, "%s", err)
			}
		}
		ig, err := p.maybeGuard()
		if err != nil {
			return err
		}
		n.Items = append(n.Items, EnumItem{Name: itemName, Value: val, Guard: ig})
		next = val + 1
		return nil
	})
	if err != nil {
		return err
	}
	p.g.add(n)
	return nil
}

func (p *parser) parseStruct(isFormat bool) error {
	name, pos, err := p.expectIdent()
	if err != nil {
		return err
	}
	kind := KindStruct
	if isFormat {
		if p.g.Format != nil {
			return ffderr.NewSemantic(pos, name, "duplicate format (already declared as %s)", p.g.Format.Name)
		}
		kind = KindFormat
	}
	n := &Node{Kind: kind, Name: name, Pos: pos, IsFormat: isFormat, Attrs: p.takeAttrs()}

	if !isFormat {
		t, err := p.l.Peek()
		if err != nil {
			return err
		}
		switch t.Kind {
		case lexer.LT:
			if _, err := p.l.Next(); err != nil {
				return err
			}
			for {
				pn, _, err := p.expectIdent()
				if err != nil {
					return err
				}
				n.Params = append(n.Params, Param{Name: pn})
				c, err := p.l.Next()
				if err != nil {
					return err
				}
				if c.Kind == lexer.GT {
					break
				}
				if c.Kind != lexer.COMMA {
					return ffderr.NewSyntax(c.Pos, "expected ',' or '>' in parameter list")
				}
			}
		case lexer.COLON:
			if _, err := p.l.Next(); err != nil {
				return err
			}
			for {
				vt, err := p.l.Next()
				if err != nil {
					return err
				}
				var lo int
				switch vt.Kind {
				case lexer.LBRACKET:
					return ffderr.NewSyntax(vt.Pos, "bracketed value-range form not supported; use 'a-b' or comma-separated values")
				case lexer.INT:
					lo, err = parseIntToken(vt.String())
					if err != nil {
						return ffderr.NewSyntax(vt.Pos, "%s", err)
					}
				default:
					return ffderr.NewSyntax(vt.Pos, "expected integer in value-list, got %s", vt.Kind)
				}

				// "a-b" range form (§3.2): the lexer tokenizes the adjacent
				// "-b" as its own negative INT, since whitespace never
				// separates a range's dash from its bound.
				hi := lo
				if nt, err := p.l.Peek(); err != nil {
					return err
				} else if nt.Kind == lexer.INT && strings.HasPrefix(nt.String(), "-") &&
					vt.Pos.Offset+len(vt.Text) == nt.Pos.Offset {
					if _, err := p.l.Next(); err != nil {
						return err
					}
					negHi, err := parseIntToken(nt.String())
					if err != nil {
						return ffderr.NewSyntax(nt.Pos, "%s", err)
					}
					hi = -negHi
				}
				if lo > hi {
					return ffderr.NewSemantic(vt.Pos, n.Name, "value-list range %d-%d: lo exceeds hi", lo, hi)
				}
				n.ValueList = append(n.ValueList, ValueRange{Lo: lo, Hi: hi})

				c, err := p.l.Peek()
				if err != nil {
					return err
				}
				if c.Kind != lexer.COMMA {
					break
				}
				if _, err := p.l.Next(); err != nil {
					return err
				}
			}
		}
	}

	if err := p.expectEOL(); err != nil {
		return err
	}

	err = p.forEachBodyLine(func() error {
		if len(n.Fields) >= p.b.maxFields {
			return ffderr.NewSemantic(n.Pos, n.Name, "struct exceeds max %d fields", p.b.maxFields)
		}
		f, err := p.parseField(n)
		if err != nil {
			return err
		}
		n.Fields = append(n.Fields, f)
		return nil
	})
	if err != nil {
		return err
	}
	p.g.add(n)
	return nil
}

func (p *parser) parseField(owner *Node) (*Node, error) {
	fpos, err := p.l.Peek()
	if err != nil {
		return nil, err
	}
	f := &Node{Kind: KindField, Base: owner, Pos: fpos.Pos, Attrs: p.takeAttrs()}

	t, err := p.l.Peek()
	if err != nil {
		return nil, err
	}
	if t.Kind == lexer.ELLIPSIS {
		if _, err := p.l.Next(); err != nil {
			return nil, err
		}
		path, err := p.parseDottedPath()
		if err != nil {
			return nil, err
		}
		f.Flags.Variadic = true
		f.TypeName = path
		g, err := p.maybeGuard()
		if err != nil {
			return nil, err
		}
		f.Guard = g
		return f, nil
	}

	typeName, args, hashType, isHashKey, err := p.parseFieldTypeName()
	if err != nil {
		return nil, err
	}
	f.TypeName = typeName
	f.Args = args
	f.Flags.HashKey = isHashKey
	f.HashType = hashType

	nameTok, err := p.l.Peek()
	if err != nil {
		return nil, err
	}
	if nameTok.Kind == lexer.IDENT {
		if _, err := p.l.Next(); err != nil {
			return nil, err
		}
		f.Name = nameTok.String()
	} else {
		f.Flags.Composite = true
	}

	for {
		t, err := p.l.Peek()
		if err != nil {
			return nil, err
		}
		if t.Kind != lexer.LBRACKET {
			break
		}
		body, pos, err := p.l.CaptureBracketAttr()
		if err != nil {
			return nil, err
		}
		if len(f.Dims) >= p.b.maxArrayDims {
			return nil, ffderr.NewSemantic(pos, f.Name, "array exceeds max %d dimensions", p.b.maxArrayDims)
		}
		d, err := parseDim(body)
		if err != nil {
			return nil, ffderr.NewSyntax(pos, "%s", err)
		}
		f.Dims = append(f.Dims, d)
		f.Flags.Array = true
	}

	g, err := p.maybeGuard()
	if err != nil {
		return nil, err
	}
	f.Guard = g
	return f, nil
}

// parseFieldTypeName reads a field's data-type name token, handling the
// "TYPE<KEY>[]" hash-key form and the "Base<args>" parametric-invocation
// form (§4.1 field forms, §4.3 step 1).
func (p *parser) parseFieldTypeName() (typeName string, args []string, hashType string, isHashKey bool, err error) {
	base, _, err := p.expectIdent()
	if err != nil {
		return "", nil, "", false, err
	}
	t, err := p.l.Peek()
	if err != nil {
		return "", nil, "", false, err
	}
	if t.Kind != lexer.LT {
		return base, nil, "", false, nil
	}
	if _, err := p.l.Next(); err != nil {
		return "", nil, "", false, err
	}
	for {
		at, err := p.l.Next()
		if err != nil {
			return "", nil, "", false, err
		}
		if at.Kind == lexer.GT {
			break
		}
		if at.Kind == lexer.COMMA {
			continue
		}
		args = append(args, at.String())
	}

	bt, err := p.l.Peek()
	if err != nil {
		return "", nil, "", false, err
	}
	if bt.Kind == lexer.LBRACKET {
		body, _, err := p.l.CaptureBracketAttr()
		if err != nil {
			return "", nil, "", false, err
		}
		if body == "" {
			hashTarget := strings.Join(args, ",")
			if hashTarget == "" {
				hashTarget = base
			}
			return base, nil, hashTarget, true, nil
		}
		return "", nil, "", false, ffderr.NewSyntax(bt.Pos, "expected '[]' to close hash-key field type")
	}
	return base, args, "", false, nil
}

func (p *parser) parseDottedPath() (string, error) {
	first, _, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	parts := []string{first}
	for {
		t, err := p.l.Peek()
		if err != nil {
			return "", err
		}
		if t.Kind != lexer.DOT {
			break
		}
		if _, err := p.l.Next(); err != nil {
			return "", err
		}
		next, _, err := p.expectIdent()
		if err != nil {
			return "", err
		}
		parts = append(parts, next)
	}
	return strings.Join(parts, "."), nil
}

func parseDim(body string) (Dim, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Dim{}, fmt.Errorf("empty array dimension")
	}
	if v, err := strconv.Atoi(body); err == nil {
		if strings.HasPrefix(body, "-") {
			return Dim{Lit: -v, Sentinel: true}, nil
		}
		return Dim{Lit: v}, nil
	}
	return Dim{Sym: body}, nil
}

func parseIntToken(text string) (int, error) {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") ||
		strings.HasPrefix(text, "-0x") || strings.HasPrefix(text, "-0X") {
		neg := strings.HasPrefix(text, "-")
		hex := text
		if neg {
			hex = text[1:]
		}
		v, err := strconv.ParseInt(hex, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed hex literal %q", text)
		}
		if neg {
			return -int(v), nil
		}
		return int(v), nil
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("malformed integer literal %q", text)
	}
	return v, nil
}
