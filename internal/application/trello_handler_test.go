package application

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlassian-suite-mcp/internal/domain"
	"atlassian-suite-mcp/internal/infrastructure"
)

func newTrelloHandlerForTest(t *testing.T, handlerFunc http.HandlerFunc) *TrelloHandler {
	t.Helper()
	server := httptest.NewServer(handlerFunc)
	t.Cleanup(server.Close)

	client := infrastructure.NewTrelloClient(&domain.TrelloConfig{
		APIKey:   "key",
		APIToken: "token",
		BaseURL:  server.URL,
		MemberID: "me123",
	}, nil)
	return NewTrelloHandler(client, domain.NewResponseMapper())
}

func TestTrelloHandler_GetBoards_ProjectsOnlyIDNameURL(t *testing.T) {
	handler := newTrelloHandlerForTest(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"id": "b1", "name": "Sprint", "url": "https://trello.com/b/b1", "closed": false, "idOrganization": "org1"},
			{"id": "b2", "name": "Backlog", "url": "https://trello.com/b/b2", "closed": true, "idOrganization": "org1"}
		]`)
	})

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolTrelloGetBoards,
	})
	require.NoError(t, err)

	summary := decodeSummary(t, resp)
	boards := summary["boards"].([]interface{})
	require.Len(t, boards, 2)

	first := boards[0].(map[string]interface{})
	assert.Equal(t, "b1", first["id"])
	assert.Equal(t, "Sprint", first["name"])
	assert.Equal(t, "https://trello.com/b/b1", first["url"])
	assert.NotContains(t, first, "closed", "summary projects only id/name/url")

	raw := summary["raw"].([]interface{})
	rawFirst := raw[0].(map[string]interface{})
	assert.Equal(t, false, rawFirst["closed"], "raw keeps every field the remote returned")
	assert.Equal(t, "org1", rawFirst["idOrganization"])
}

func TestTrelloHandler_GetLists_Summary(t *testing.T) {
	handler := newTrelloHandlerForTest(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":"l1","name":"To Do","idBoard":"b1","pos":16384}]`)
	})

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name:      ToolTrelloGetLists,
		Arguments: map[string]interface{}{"board_id": "b1"},
	})
	require.NoError(t, err)

	summary := decodeSummary(t, resp)
	lists := summary["lists"].([]interface{})
	require.Len(t, lists, 1)

	list := lists[0].(map[string]interface{})
	assert.Equal(t, "l1", list["id"])
	assert.Equal(t, "b1", list["idBoard"])
	assert.Equal(t, float64(16384), list["pos"])
}

func TestTrelloHandler_GetCard_Summary(t *testing.T) {
	handler := newTrelloHandlerForTest(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"id": "c1", "name": "Fix login", "desc": "steps to reproduce",
			"idBoard": "b1", "idList": "l1",
			"url": "https://trello.com/c/c1", "shortUrl": "https://trello.com/c/c1s",
			"due": "2024-07-01T12:00:00.000Z",
			"labels": [{"name": "bug", "color": "red"}],
			"idMembers": ["m1", "m2"],
			"badges": {"votes": 3}
		}`)
	})

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name:      ToolTrelloGetCard,
		Arguments: map[string]interface{}{"card_id": "c1"},
	})
	require.NoError(t, err)

	summary := decodeSummary(t, resp)
	assert.Equal(t, "Fix login", summary["name"])
	assert.Equal(t, "steps to reproduce", summary["desc"])
	assert.Equal(t, "2024-07-01T12:00:00.000Z", summary["due"])

	labels := summary["labels"].([]interface{})
	require.Len(t, labels, 1)

	members := summary["idMembers"].([]interface{})
	assert.Equal(t, []interface{}{"m1", "m2"}, members)

	raw := summary["raw"].(map[string]interface{})
	assert.NotNil(t, raw["badges"], "unprojected fields survive under raw")
}

func TestTrelloHandler_MoveCardToList_Summary(t *testing.T) {
	handler := newTrelloHandlerForTest(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"c1","name":"Fix login","idBoard":"b1","idList":"l2"}`)
	})

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolTrelloMoveCardToList,
		Arguments: map[string]interface{}{
			"card_id":        "c1",
			"target_list_id": "l2",
		},
	})
	require.NoError(t, err)

	summary := decodeSummary(t, resp)
	assert.Equal(t, "c1", summary["id"])
	assert.Equal(t, "l2", summary["idList"])
}

func TestTrelloHandler_GetCardComments_TextFallback(t *testing.T) {
	handler := newTrelloHandlerForTest(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"id": "a1", "type": "commentCard", "date": "2024-06-01T10:00:00.000Z",
			 "data": {"text": "ship it"},
			 "memberCreator": {"username": "alice"}},
			{"id": "a2", "type": "commentCard", "date": "2024-06-02T10:00:00.000Z",
			 "data": {"textData": {"text": "needs work"}},
			 "memberCreator": {"username": "bob"}}
		]`)
	})

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name:      ToolTrelloGetCardComments,
		Arguments: map[string]interface{}{"card_id": "c1"},
	})
	require.NoError(t, err)

	summary := decodeSummary(t, resp)
	comments := summary["comments"].([]interface{})
	require.Len(t, comments, 2)

	first := comments[0].(map[string]interface{})
	assert.Equal(t, "ship it", first["text"])
	assert.Equal(t, "alice", first["memberCreator"])

	second := comments[1].(map[string]interface{})
	assert.Equal(t, "needs work", second["text"], "text falls back to data.textData.text")
	assert.Equal(t, "bob", second["memberCreator"])
}

func TestTrelloHandler_GetCardAttachments_Summary(t *testing.T) {
	handler := newTrelloHandlerForTest(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":"at1","name":"log.txt","url":"https://trello.com/at1","bytes":512,"date":"2024-06-01T10:00:00.000Z","edgeColor":"blue"}]`)
	})

	resp, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name:      ToolTrelloGetCardAttachments,
		Arguments: map[string]interface{}{"card_id": "c1"},
	})
	require.NoError(t, err)

	summary := decodeSummary(t, resp)
	attachments := summary["attachments"].([]interface{})
	require.Len(t, attachments, 1)

	first := attachments[0].(map[string]interface{})
	assert.Equal(t, "log.txt", first["name"])
	assert.Equal(t, float64(512), first["bytes"])
	assert.NotContains(t, first, "edgeColor", "edgeColor stays in raw only")
}

func TestTrelloHandler_RepeatedReadsReturnIdenticalRaw(t *testing.T) {
	handler := newTrelloHandlerForTest(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id":"b1","name":"Sprint","url":"https://trello.com/b/b1","closed":false,"idOrganization":"org1"}]`)
	})

	req := &domain.ToolRequest{Name: ToolTrelloGetBoards}

	first, err := handler.Handle(context.Background(), req)
	require.NoError(t, err)
	second, err := handler.Handle(context.Background(), req)
	require.NoError(t, err)

	// Read operations against unchanged remote state are idempotent: the
	// serialized payloads match byte for byte.
	assert.Equal(t, first.Content[0].Text, second.Content[0].Text)
	assert.Equal(t, decodeSummary(t, first)["raw"], decodeSummary(t, second)["raw"])
}

func TestTrelloHandler_RemoteFailureCarriesToolName(t *testing.T) {
	handler := newTrelloHandlerForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, "invalid key")
	})

	_, err := handler.Handle(context.Background(), &domain.ToolRequest{
		Name: ToolTrelloGetBoards,
	})
	require.Error(t, err)

	domainErr, ok := err.(*domain.Error)
	require.True(t, ok)
	assert.Equal(t, domain.AuthenticationError, domainErr.Code)
	assert.Contains(t, domainErr.Message, "trello_get_boards failed")
}

func TestTrelloHandler_ListTools(t *testing.T) {
	handler := newTrelloHandlerForTest(t, func(w http.ResponseWriter, r *http.Request) {})

	tools := handler.ListTools()
	assert.Len(t, tools, 8)

	names := map[string]bool{}
	for _, tool := range tools {
		names[tool.Name] = true
	}
	assert.True(t, names[ToolTrelloGetBoards])
	assert.True(t, names[ToolTrelloMoveListToBoard])
	assert.True(t, names[ToolTrelloGetCardComments])
}
