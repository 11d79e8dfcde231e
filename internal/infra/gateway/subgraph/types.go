package subgraph

import (
	"encoding/json"
	"strings"
)

// GraphQLRequest is the body of every POST to the indexer
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse is the generic GraphQL envelope
type GraphQLResponse struct {
	Data   json.RawMessage     `json:"data"`
	Errors []GraphQLErrorEntry `json:"errors,omitempty"`
}

// GraphQLErrorEntry is one item of the GraphQL errors array
type GraphQLErrorEntry struct {
	Message string `json:"message"`
}

// GraphQLError is returned when the indexer answers with a non-empty errors array
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	if len(e.Messages) == 0 {
		return "graphql error"
	}
	return "graphql error: " + strings.Join(e.Messages, "; ")
}

// TransfersData is the data payload of the transfers query
type TransfersData struct {
	Transfers []TransferNode `json:"transfers"`
}

// TransferNode mirrors one transfer entity as the subgraph serves it.
// BigInt and timestamp fields arrive as JSON strings.
type TransferNode struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	Timestamp string `json:"timestamp"`
}
