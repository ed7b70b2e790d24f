package graphql

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
)

// GraphQLRequest represents a GraphQL HTTP request
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// GraphQLResponse represents a GraphQL HTTP response
type GraphQLResponse struct {
	Data   any            `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error
type GraphQLError struct {
	Message string `json:"message"`
}

// HandlerOptions bounds the queries a handler will execute
type HandlerOptions struct {
	MaxDepth   int
	Complexity *ComplexityConfig
	Logger     logging.Logger
}

// GraphQLHandler handles GraphQL HTTP requests
type GraphQLHandler struct {
	schema     graphql.Schema
	maxDepth   int
	complexity *ComplexityConfig
	logger     logging.Logger
}

// NewGraphQLHandler creates a new GraphQL HTTP handler. Zero options select
// DefaultMaxDepth and DefaultComplexityConfig.
func NewGraphQLHandler(schema graphql.Schema, opts HandlerOptions) (*GraphQLHandler, error) {
	h := &GraphQLHandler{
		schema:     schema,
		maxDepth:   opts.MaxDepth,
		complexity: opts.Complexity,
		logger:     opts.Logger,
	}
	if h.maxDepth <= 0 {
		h.maxDepth = DefaultMaxDepth
	}
	if h.complexity == nil {
		h.complexity = DefaultComplexityConfig()
	}
	if err := ValidateComplexityConfig(h.complexity); err != nil {
		return nil, err
	}
	if h.logger == nil {
		h.logger = logging.NewNopLogger()
	}
	return h, nil
}

func writeErrors(w http.ResponseWriter, status int, messages ...string) {
	response := GraphQLResponse{Errors: make([]GraphQLError, len(messages))}
	for i, m := range messages {
		response.Errors[i] = GraphQLError{Message: m}
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// decodeRequest reads a POST body or GET query string
func decodeRequest(r *http.Request) (GraphQLRequest, error) {
	var req GraphQLRequest
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				return req, errors.New("invalid variables")
			}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errors.New("invalid request body")
	}
	if req.Query == "" {
		return req, errors.New("query is required")
	}
	return req, nil
}

// isMutation reports whether the selected operation is a mutation
func isMutation(query, operationName string) bool {
	document, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return false
	}
	for _, definition := range document.Definitions {
		op, ok := definition.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName != "" && (op.Name == nil || op.Name.Value != operationName) {
			continue
		}
		if op.Operation == ast.OperationTypeMutation {
			return true
		}
	}
	return false
}

// ServeHTTP executes GET and POST GraphQL requests. Mutations require POST.
func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		writeErrors(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := decodeRequest(r)
	if err != nil {
		writeErrors(w, http.StatusBadRequest, err.Error())
		return
	}
	if r.Method == http.MethodGet && isMutation(req.Query, req.OperationName) {
		w.Header().Set("Allow", "POST")
		writeErrors(w, http.StatusMethodNotAllowed, "mutations require POST")
		return
	}

	if err := ValidateQueryDepth(req.Query, h.maxDepth); err != nil {
		writeErrors(w, http.StatusBadRequest, err.Error())
		return
	}
	score, err := ValidateQueryComplexity(req.Query, h.complexity, req.Variables)
	if err != nil {
		writeErrors(w, http.StatusBadRequest, err.Error())
		return
	}

	logger := logging.FromContext(r.Context(), h.logger)
	result := ExecuteQuery(r.Context(), h.schema, req.Query, req.Variables, req.OperationName)

	response := GraphQLResponse{Data: result.Data}
	if result.HasErrors() {
		response.Errors = make([]GraphQLError, len(result.Errors))
		for i, err := range result.Errors {
			response.Errors[i] = GraphQLError{Message: err.Message}
		}
		logger.Debug("graphql query returned errors",
			logging.Count(len(result.Errors)),
			logging.String("operation", req.OperationName))
	}
	logger.Debug("graphql query executed", logging.Int("complexity", score))

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
