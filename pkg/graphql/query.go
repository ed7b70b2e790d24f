package graphql

import (
	"context"

	"github.com/graphql-go/graphql"
)

// ExecuteQuery executes a GraphQL query against a schema. ctx reaches every
// resolver as ResolveParams.Context.
func ExecuteQuery(ctx context.Context, schema graphql.Schema, query string, variables map[string]any, operationName string) *graphql.Result {
	params := graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: variables,
		OperationName:  operationName,
		Context:        ctx,
	}
	return graphql.Do(params)
}
