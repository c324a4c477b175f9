package typeexpr

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/splice/internal/models"
)

// Parser parses type expressions using alecthomas/participle
type Parser struct {
	types     *participle.Parser[Expr]
	qualified *participle.Parser[QualifiedExpr]
}

var typeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][\w\-]*(?:\.[\w\-]+|/[\w\-]+)*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Arrow", Pattern: `<-`},
	{Name: "Punct", Pattern: `[@*\[\](){},]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// NewParser builds the grammar
func NewParser() *Parser {
	options := []participle.Option{
		participle.Lexer(typeLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(3),
	}

	return &Parser{
		types:     participle.MustBuild[Expr](options...),
		qualified: participle.MustBuild[QualifiedExpr](options...),
	}
}

var defaultParser = NewParser()

// Parse parses an unqualified type expression
func (p *Parser) Parse(source string) (*Expr, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("empty type expression")
	}

	expr, err := p.types.ParseString("", source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse type expression %q: %w", source, err)
	}
	return expr, nil
}

// ParseQualified parses an optionally qualified type expression into a key
func (p *Parser) ParseQualified(source string) (models.QualifiedType, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return models.QualifiedType{}, fmt.Errorf("empty type expression")
	}

	parsed, err := p.qualified.ParseString("", source)
	if err != nil {
		return models.QualifiedType{}, fmt.Errorf("failed to parse type expression %q: %w", source, err)
	}

	key := models.Of(models.TypeIdentity(parsed.Type.String()))
	if q := parsed.Qualifier; q != nil {
		switch {
		case q.Label != nil:
			key.Qualifier = models.Label(*q.Label)
		case q.Attr != nil:
			key.Qualifier = models.Attribute(models.TypeIdentity(q.Attr.String()))
		}
	}
	return key, nil
}

// Parse parses an unqualified type expression with the shared parser
func Parse(source string) (*Expr, error) {
	return defaultParser.Parse(source)
}

// ParseQualified parses a qualified type expression with the shared parser
func ParseQualified(source string) (models.QualifiedType, error) {
	return defaultParser.ParseQualified(source)
}

// Canonical returns the canonical identity of a type expression
func Canonical(source string) (models.TypeIdentity, error) {
	expr, err := Parse(source)
	if err != nil {
		return "", err
	}
	return models.TypeIdentity(expr.String()), nil
}

// MustCanonical is Canonical for literals known to be valid
func MustCanonical(source string) models.TypeIdentity {
	identity, err := Canonical(source)
	if err != nil {
		panic(err)
	}
	return identity
}
