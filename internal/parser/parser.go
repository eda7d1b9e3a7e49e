package parser

import (
	"strconv"
	"strings"

	"github.com/zakazai/tinysql/internal/lexer"
	"github.com/zakazai/tinysql/internal/types"
)

// Statement is a parsed command.
type Statement interface {
	StatementType() string
}

// ColumnDef is one column of a CREATE TABLE statement. Type is the raw type
// token; it is mapped to a DataType when the statement is planned.
type ColumnDef struct {
	Name string
	Type string
}

// CreateStatement represents CREATE TABLE name (col TYPE, ...)
type CreateStatement struct {
	Table   string
	Columns []ColumnDef
}

// InsertStatement represents INSERT INTO name VALUES (v, ...)
type InsertStatement struct {
	Table  string
	Values []types.Value
}

// AggregateExpr is the FN(column) projection of an aggregate SELECT.
type AggregateExpr struct {
	Func   string
	Column string
}

// WhereClause is a single column/operator/literal comparison. Value keeps the
// literal text; the engine parses it against the column type.
type WhereClause struct {
	Column   string
	Operator string
	Value    string
}

// SelectStatement represents SELECT * | col, ... | FN(col) FROM name [WHERE ...]
type SelectStatement struct {
	Table     string
	Columns   []string
	Aggregate *AggregateExpr
	Where     *WhereClause
}

// JoinStatement represents JOIN left right ON leftColumn [=] rightColumn
type JoinStatement struct {
	Left        string
	Right       string
	LeftColumn  string
	RightColumn string
}

// TablesStatement represents TABLES
type TablesStatement struct{}

func (*CreateStatement) StatementType() string { return "CREATE" }
func (*InsertStatement) StatementType() string { return "INSERT" }
func (*SelectStatement) StatementType() string { return "SELECT" }
func (*JoinStatement) StatementType() string   { return "JOIN" }
func (*TablesStatement) StatementType() string { return "TABLES" }

// Parser represents a statement parser
type Parser struct {
	l   *lexer.Lexer
	tok lexer.Token
}

// New creates a new parser with the given lexer
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	return p
}

// Parse parses a single statement. A trailing semicolon is allowed; anything
// after the statement is an error.
func Parse(input string) (Statement, error) {
	return New(lexer.New(input)).Parse()
}

func (p *Parser) next() lexer.Token {
	prev := p.tok
	p.tok = p.l.NextToken()
	return prev
}

// Parse parses the input statement
func (p *Parser) Parse() (Statement, error) {
	if p.tok.Type == lexer.EOF {
		return nil, parseError("empty statement")
	}
	if p.tok.Type != lexer.KEYWORD {
		return nil, parseError("unsupported statement: %s", p.tok.Literal)
	}

	var (
		stmt Statement
		err  error
	)
	keyword := p.next().Literal
	switch keyword {
	case "SELECT":
		stmt, err = p.parseSelect()
	case "INSERT":
		stmt, err = p.parseInsert()
	case "CREATE":
		stmt, err = p.parseCreate()
	case "JOIN":
		stmt, err = p.parseJoin()
	case "TABLES":
		stmt = &TablesStatement{}
	default:
		return nil, parseError("unsupported statement type: %s", keyword)
	}
	if err != nil {
		return nil, err
	}

	if p.tok.Type == lexer.SEMICOLON {
		p.next()
	}
	if p.tok.Type != lexer.EOF {
		return nil, parseError("unexpected %s after statement", describe(p.tok))
	}
	return stmt, nil
}

func (p *Parser) parseSelect() (*SelectStatement, error) {
	stmt := &SelectStatement{}

	switch {
	case p.tok.Type == lexer.ASTERISK:
		p.next()
		stmt.Columns = []string{"*"}
	case p.tok.Type == lexer.IDENTIFIER:
		for {
			name, err := p.expectIdentifier("column name or aggregate")
			if err != nil {
				return nil, err
			}
			if p.tok.Type == lexer.LPAREN && len(stmt.Columns) == 0 {
				agg, err := p.parseAggregate(name)
				if err != nil {
					return nil, err
				}
				stmt.Aggregate = agg
				break
			}
			stmt.Columns = append(stmt.Columns, name)
			if p.tok.Type != lexer.COMMA {
				break
			}
			p.next()
		}
	default:
		return nil, parseError("expected * or column list, got %s", describe(p.tok))
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.expectIdentifier("table name")
	if err != nil {
		return nil, err
	}
	stmt.Table = table

	if p.tok.Type == lexer.KEYWORD && p.tok.Literal == "WHERE" {
		p.next()
		where, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

// parseAggregate parses the (column) part of FN(column). COUNT(*) is allowed.
func (p *Parser) parseAggregate(fn string) (*AggregateExpr, error) {
	p.next()
	agg := &AggregateExpr{Func: strings.ToUpper(fn)}
	switch p.tok.Type {
	case lexer.ASTERISK:
		agg.Column = "*"
	case lexer.IDENTIFIER:
		agg.Column = p.tok.Literal
	default:
		return nil, parseError("expected column inside %s(), got %s", agg.Func, describe(p.tok))
	}
	p.next()
	if p.tok.Type != lexer.RPAREN {
		return nil, parseError("expected ), got %s", describe(p.tok))
	}
	p.next()
	return agg, nil
}

func (p *Parser) parseWhere() (*WhereClause, error) {
	col, err := p.expectIdentifier("column name")
	if err != nil {
		return nil, err
	}
	where := &WhereClause{Column: col}

	switch p.tok.Type {
	case lexer.EQUALS, lexer.OPERATOR:
		where.Operator = p.next().Literal
	default:
		return nil, parseError("expected comparison operator, got %s", describe(p.tok))
	}

	tok := p.next()
	switch {
	case tok.Type == lexer.NUMBER, tok.Type == lexer.STRING, tok.Type == lexer.IDENTIFIER:
		where.Value = tok.Literal
	case tok.Type == lexer.KEYWORD && (tok.Literal == "TRUE" || tok.Literal == "FALSE"):
		where.Value = strings.ToLower(tok.Literal)
	case tok.Type == lexer.KEYWORD && tok.Literal == "NULL":
		where.Value = types.NullLiteral
	default:
		return nil, parseError("expected value after %s, got %s", where.Operator, describe(tok))
	}
	return where, nil
}

func (p *Parser) parseInsert() (*InsertStatement, error) {
	stmt := &InsertStatement{}

	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := p.expectIdentifier("table name")
	if err != nil {
		return nil, err
	}
	stmt.Table = table
	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}

	parens := p.tok.Type == lexer.LPAREN
	if parens {
		p.next()
	}
	for {
		v, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, v)
		if p.tok.Type != lexer.COMMA {
			break
		}
		p.next()
	}
	if parens {
		if p.tok.Type != lexer.RPAREN {
			return nil, parseError("expected comma or ), got %s", describe(p.tok))
		}
		p.next()
	}
	return stmt, nil
}

// parseLiteral turns one insert value into a Value: whole numbers are
// Integer, other numbers Double, TRUE/FALSE Boolean, NULL Null, and quoted
// strings or bare words Text.
func (p *Parser) parseLiteral() (types.Value, error) {
	tok := p.next()
	switch tok.Type {
	case lexer.NUMBER:
		if !strings.Contains(tok.Literal, ".") {
			if n, err := strconv.ParseInt(tok.Literal, 10, 64); err == nil {
				return types.IntegerValue(n), nil
			}
		}
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return types.Null(), parseError("invalid number: %s", tok.Literal)
		}
		return types.DoubleValue(f), nil
	case lexer.STRING, lexer.IDENTIFIER:
		return types.TextValue(tok.Literal), nil
	case lexer.KEYWORD:
		switch tok.Literal {
		case "TRUE":
			return types.BooleanValue(true), nil
		case "FALSE":
			return types.BooleanValue(false), nil
		case "NULL":
			return types.Null(), nil
		}
	}
	return types.Null(), parseError("expected value, got %s", describe(tok))
}

func (p *Parser) parseCreate() (*CreateStatement, error) {
	stmt := &CreateStatement{}

	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, err
	}
	table, err := p.expectIdentifier("table name")
	if err != nil {
		return nil, err
	}
	stmt.Table = table

	if p.tok.Type != lexer.LPAREN {
		return nil, parseError("expected (, got %s", describe(p.tok))
	}
	p.next()

	for {
		colName, err := p.expectIdentifier("column name")
		if err != nil {
			return nil, err
		}
		colType, err := p.expectIdentifier("column type")
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, ColumnDef{Name: colName, Type: colType})

		tok := p.next()
		if tok.Type == lexer.RPAREN {
			break
		}
		if tok.Type != lexer.COMMA {
			return nil, parseError("expected comma or ), got %s", describe(tok))
		}
	}
	return stmt, nil
}

func (p *Parser) parseJoin() (*JoinStatement, error) {
	stmt := &JoinStatement{}
	var err error

	if stmt.Left, err = p.expectIdentifier("left table"); err != nil {
		return nil, err
	}
	if stmt.Right, err = p.expectIdentifier("right table"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("ON"); err != nil {
		return nil, err
	}
	if stmt.LeftColumn, err = p.expectIdentifier("left column"); err != nil {
		return nil, err
	}
	if p.tok.Type == lexer.EQUALS {
		p.next()
	}
	if stmt.RightColumn, err = p.expectIdentifier("right column"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) expectKeyword(keyword string) error {
	if p.tok.Type != lexer.KEYWORD || p.tok.Literal != keyword {
		return parseError("expected %s, got %s", keyword, describe(p.tok))
	}
	p.next()
	return nil
}

func (p *Parser) expectIdentifier(what string) (string, error) {
	if p.tok.Type != lexer.IDENTIFIER {
		return "", parseError("expected %s, got %s", what, describe(p.tok))
	}
	return p.next().Literal, nil
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.ILLEGAL:
		return "unterminated string " + tok.Literal
	}
	return strconv.Quote(tok.Literal)
}

func parseError(format string, args ...interface{}) error {
	return types.Errorf(types.KindParseError, format, args...)
}
