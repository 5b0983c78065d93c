package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holloway-dev/pathgram/internal/config"
	"github.com/holloway-dev/pathgram/internal/ruletree"
	"github.com/holloway-dev/pathgram/internal/sessionlog"
	"github.com/holloway-dev/pathgram/internal/symbol"
)

func TestFoldCondition(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(foldCondition("Lexical"), foldCondition("lexical"))
	assert.Equal(foldCondition("LEXICAL"), foldCondition("lexical"))
	assert.NotEqual(foldCondition("lexical"), foldCondition("syntactic"))
}

func TestToNode_GuardFoldsConditionName(t *testing.T) {
	assert := assert.New(t)

	n := wireNode{
		Kind: "guard",
		Cond: "Feature",
		Children: []wireNode{
			{Kind: "symbol", Symbol: "X"},
		},
	}

	node := toNode(n)
	assert.Equal(ruletree.KindGuard, node.Kind)
	assert.Equal(symbol.Condition("feature"), node.Cond)
}

func newTestAPI(t *testing.T) *API {
	t.Helper()
	sessions, err := sessionlog.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })

	api, err := NewAPI("jwt-secret", "api-secret", sessions)
	require.NoError(t, err)
	return api
}

func simpleCompileBody(name string, leftRecursive bool) []byte {
	body, _ := json.Marshal(compileRequest{
		Productions: []wireProduction{{
			Name:          name,
			Template:      wireNode{Kind: "symbol", Symbol: "X"},
			LeftRecursive: leftRecursive,
			IsStart:       true,
		}},
	})
	return body
}

func TestHandleCompileGrammar_CachesGeneratedSource(t *testing.T) {
	assert := assert.New(t)

	api := newTestAPI(t)
	api.CacheDir = t.TempDir()

	body := simpleCompileBody("Root", false)

	rec1 := httptest.NewRecorder()
	api.handleCompileGrammar(rec1, httptest.NewRequest(http.MethodPost, "/v1/grammars", bytes.NewReader(body)))
	assert.Equal(http.StatusOK, rec1.Code)

	var resp1, resp2 compileResponse
	require.NoError(t, json.Unmarshal(rec1.Body.Bytes(), &resp1))

	rec2 := httptest.NewRecorder()
	api.handleCompileGrammar(rec2, httptest.NewRequest(http.MethodPost, "/v1/grammars", bytes.NewReader(body)))
	assert.Equal(http.StatusOK, rec2.Code)
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &resp2))

	assert.Equal(resp1.Source, resp2.Source, "a resubmitted grammar must return identical source")
	assert.NotEmpty(resp1.Source)

	entries, err := os.ReadDir(api.CacheDir)
	require.NoError(t, err)
	assert.Len(entries, 1, "the generated source must be stored as one cache entry")
}

func TestHandleCompileGrammar_ConfigOverridesNonLeftRecursive(t *testing.T) {
	assert := assert.New(t)

	api := newTestAPI(t)
	api.Session = config.Session{NonLeftRecursive: []string{"Root"}}

	body := simpleCompileBody("Root", true)

	rec := httptest.NewRecorder()
	api.handleCompileGrammar(rec, httptest.NewRequest(http.MethodPost, "/v1/grammars", bytes.NewReader(body)))
	assert.Equal(http.StatusOK, rec.Code)

	var resp compileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	api.mu.Lock()
	g := api.grammars[resp.ID]
	api.mu.Unlock()
	require.Len(t, g.Productions, 1)
	assert.False(g.Productions[0].LeftRecursive, "operator-configured non-left-recursive names must override the request")
}

func TestHandleCompileGrammar_ConfigSessionAmbiguousAppliesToAllProductions(t *testing.T) {
	assert := assert.New(t)

	api := newTestAPI(t)
	api.Session = config.Session{Ambiguous: true}

	body := simpleCompileBody("Root", false)

	rec := httptest.NewRecorder()
	api.handleCompileGrammar(rec, httptest.NewRequest(http.MethodPost, "/v1/grammars", bytes.NewReader(body)))
	assert.Equal(http.StatusOK, rec.Code)

	var resp compileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	api.mu.Lock()
	g := api.grammars[resp.ID]
	api.mu.Unlock()
	require.Len(t, g.Productions, 1)
	assert.True(g.Productions[0].Ambiguous, "an operator-configured ambiguous session must apply even when the request didn't ask for it")
}
