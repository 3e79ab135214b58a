package taiko

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taikodata/internal/chains"
	"taikodata/internal/subgraph"
)

var operationPattern = regexp.MustCompile(`query\s+(\w+)`)

// fakeSubgraph answers GraphQL requests by operation name and records the variables of
// each call.
type fakeSubgraph struct {
	mu        sync.Mutex
	responses map[string]string
	variables map[string]map[string]any
}

func newFakeSubgraph(responses map[string]string) *fakeSubgraph {
	return &fakeSubgraph{responses: responses, variables: make(map[string]map[string]any)}
}

func (f *fakeSubgraph) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	op := ""
	if m := operationPattern.FindStringSubmatch(req.Query); len(m) == 2 {
		op = m[1]
	}

	f.mu.Lock()
	f.variables[op] = req.Variables
	body, ok := f.responses[op]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		_, _ = w.Write([]byte(`{"errors":[{"message":"unknown operation ` + op + `"}]}`))
		return
	}
	_, _ = w.Write([]byte(body))
}

func (f *fakeSubgraph) vars(op string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.variables[op]
}

func newTestAdapter(t *testing.T, fake *fakeSubgraph, now time.Time) *Adapter {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	reg, err := subgraph.NewRegistry(subgraph.RegistryOptions{
		Endpoints: map[chains.ChainID]subgraph.Endpoints{
			chains.TaikoMainnet: {Tokens: server.URL + "/tokens", Pools: server.URL + "/pools"},
			chains.TaikoHoodi:   {Tokens: server.URL + "/tokens"},
		},
		HTTPClient:    server.Client(),
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	})
	require.NoError(t, err)

	adapter := NewAdapter(reg, nil)
	adapter.now = func() time.Time { return now }
	return adapter
}
