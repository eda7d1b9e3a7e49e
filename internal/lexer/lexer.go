package lexer

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType represents the type of a token
type TokenType int

const (
	// EOF represents the end of input
	EOF TokenType = iota
	// ILLEGAL represents input that cannot start any token, such as an unterminated string
	ILLEGAL
	// KEYWORD represents a keyword token
	KEYWORD
	// IDENTIFIER represents an identifier token
	IDENTIFIER
	// NUMBER represents a number token
	NUMBER
	// STRING represents a quoted string; the literal excludes the quotes
	STRING
	// SYMBOL represents any other single character
	SYMBOL
	// LPAREN represents a left parenthesis
	LPAREN
	// RPAREN represents a right parenthesis
	RPAREN
	// COMMA represents a comma
	COMMA
	// SEMICOLON represents a semicolon
	SEMICOLON
	// ASTERISK represents an asterisk
	ASTERISK
	// EQUALS represents an equals sign
	EQUALS
	// OPERATOR represents a comparison other than '=': != < > <= >=
	OPERATOR
)

var tokenTypeNames = [...]string{
	EOF:        "EOF",
	ILLEGAL:    "ILLEGAL",
	KEYWORD:    "KEYWORD",
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	STRING:     "STRING",
	SYMBOL:     "SYMBOL",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	COMMA:      "COMMA",
	SEMICOLON:  "SEMICOLON",
	ASTERISK:   "ASTERISK",
	EQUALS:     "EQUALS",
	OPERATOR:   "OPERATOR",
}

func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]bool{
	"SELECT": true,
	"FROM":   true,
	"WHERE":  true,
	"INSERT": true,
	"INTO":   true,
	"VALUES": true,
	"CREATE": true,
	"TABLE":  true,
	"TABLES": true,
	"JOIN":   true,
	"ON":     true,
	"NULL":   true,
	"TRUE":   true,
	"FALSE":  true,
}

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
}

func (t Token) String() string {
	return fmt.Sprintf("Token{Type: %v, Literal: %q}", t.Type, t.Literal)
}

// Lexer represents a lexical analyzer
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
}

// New creates a new lexer with the given input
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// Tokenize returns every token of input, ending with EOF.
func Tokenize(input string) []Token {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken returns the next token. Keywords are upper-cased; identifiers
// keep their original spelling. After the input is exhausted it keeps
// returning EOF.
func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	switch l.ch {
	case '(':
		tok = Token{Type: LPAREN, Literal: "("}
	case ')':
		tok = Token{Type: RPAREN, Literal: ")"}
	case ',':
		tok = Token{Type: COMMA, Literal: ","}
	case ';':
		tok = Token{Type: SEMICOLON, Literal: ";"}
	case '*':
		tok = Token{Type: ASTERISK, Literal: "*"}
	case '=':
		tok = Token{Type: EQUALS, Literal: "="}
	case '<', '>':
		if l.peekChar() == '=' {
			ch := l.ch
			l.readChar()
			tok = Token{Type: OPERATOR, Literal: string(ch) + "="}
		} else {
			tok = Token{Type: OPERATOR, Literal: string(l.ch)}
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: OPERATOR, Literal: "!="}
		} else {
			tok = Token{Type: SYMBOL, Literal: "!"}
		}
	case 0:
		return Token{Type: EOF, Literal: ""}
	case '"', '\'':
		quote := l.ch
		l.readChar()
		literal, ok := l.readString(quote)
		if !ok {
			return Token{Type: ILLEGAL, Literal: string(quote) + literal}
		}
		tok = Token{Type: STRING, Literal: literal}
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			upperLiteral := strings.ToUpper(tok.Literal)
			if keywords[upperLiteral] {
				tok.Type = KEYWORD
				tok.Literal = upperLiteral
			} else {
				tok.Type = IDENTIFIER
			}
			return tok
		} else if isDigit(l.ch) || (l.ch == '-' && isDigit(l.peekChar())) {
			tok.Type = NUMBER
			tok.Literal = l.readNumber()
			return tok
		} else {
			tok = Token{Type: SYMBOL, Literal: string(l.ch)}
		}
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readString consumes a quoted string whose opening quote has already been
// read, leaving l.ch on the closing quote. A backslash escapes the next
// character. ok is false when the input ends before the closing quote.
func (l *Lexer) readString(quote byte) (string, bool) {
	var b strings.Builder
	for {
		switch l.ch {
		case 0:
			return b.String(), false
		case quote:
			return b.String(), true
		case '\\':
			l.readChar()
			if l.ch == 0 {
				return b.String(), false
			}
		}
		b.WriteByte(l.ch)
		l.readChar()
	}
}

func isLetter(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch))
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
