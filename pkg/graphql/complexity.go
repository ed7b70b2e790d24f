package graphql

import (
	"fmt"
	"strconv"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// ComplexityConfig defines configuration for query complexity analysis
type ComplexityConfig struct {
	MaxComplexity    int // Maximum allowed complexity score
	DefaultListLimit int // Assumed size of a list field without a limit argument
}

// DefaultComplexityConfig admits a full dashboard query with endpoint devices
func DefaultComplexityConfig() *ComplexityConfig {
	return &ComplexityConfig{MaxComplexity: 50000, DefaultListLimit: 100}
}

// ValidateComplexityConfig validates the complexity configuration
func ValidateComplexityConfig(config *ComplexityConfig) error {
	if config.MaxComplexity <= 0 {
		return fmt.Errorf("max complexity must be greater than 0, got %d", config.MaxComplexity)
	}
	if config.DefaultListLimit <= 0 {
		config.DefaultListLimit = 100
	}
	return nil
}

// listFields return lists and are multiplied by their limit
var listFields = map[string]bool{
	"devices":     true,
	"sites":       true,
	"connections": true,
	"canvases":    true,
}

// calculateQueryComplexity calculates the complexity score of a GraphQL query
func calculateQueryComplexity(document *ast.Document, config *ComplexityConfig, variableValues map[string]any) int {
	totalComplexity := 0

	for _, definition := range document.Definitions {
		if def, ok := definition.(*ast.OperationDefinition); ok {
			totalComplexity += calculateSelectionSetComplexity(def.SelectionSet, config, variableValues, 1)
		}
	}

	return totalComplexity
}

// calculateSelectionSetComplexity recursively calculates complexity of a selection set
func calculateSelectionSetComplexity(selectionSet *ast.SelectionSet, config *ComplexityConfig, variableValues map[string]any, multiplier int) int {
	if selectionSet == nil || len(selectionSet.Selections) == 0 {
		return 0
	}

	complexity := 0

	for _, selection := range selectionSet.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			// Introspection has a fixed low cost
			if isIntrospectionField(sel.Name.Value) {
				complexity++
				continue
			}

			// Leaf fields cost one per parent item
			if sel.SelectionSet == nil {
				complexity += multiplier
				continue
			}

			fieldMultiplier := multiplier
			if listFields[sel.Name.Value] {
				fieldMultiplier = multiplier * extractLimitFromArguments(sel.Arguments, variableValues, config.DefaultListLimit)
			}
			complexity += fieldMultiplier + calculateSelectionSetComplexity(sel.SelectionSet, config, variableValues, fieldMultiplier)

		case *ast.InlineFragment:
			complexity += calculateSelectionSetComplexity(sel.SelectionSet, config, variableValues, multiplier)

		case *ast.FragmentSpread:
			// Fragment spreads add minimal complexity
			complexity += multiplier
		}
	}

	return complexity
}

// extractLimitFromArguments extracts the limit value from field arguments
func extractLimitFromArguments(arguments []*ast.Argument, variableValues map[string]any, defaultLimit int) int {
	for _, arg := range arguments {
		if arg.Name.Value != "limit" {
			continue
		}
		switch value := arg.Value.(type) {
		case *ast.IntValue:
			// GetValue returns the literal text
			if limitStr, ok := value.GetValue().(string); ok {
				if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
					return limit
				}
			}
		case *ast.Variable:
			// JSON-decoded variables arrive as float64
			switch limit := variableValues[value.Name.Value].(type) {
			case int:
				if limit > 0 {
					return limit
				}
			case float64:
				if limit > 0 {
					return int(limit)
				}
			}
		}
	}

	return defaultLimit
}

// ValidateQueryComplexity validates a query against the complexity limit
func ValidateQueryComplexity(query string, config *ComplexityConfig, variableValues map[string]any) (int, error) {
	document, err := parser.Parse(parser.ParseParams{
		Source: query,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse query: %w", err)
	}

	queryComplexity := calculateQueryComplexity(document, config, variableValues)
	if queryComplexity > config.MaxComplexity {
		return queryComplexity, fmt.Errorf("query complexity %d exceeds maximum allowed complexity %d", queryComplexity, config.MaxComplexity)
	}

	return queryComplexity, nil
}
